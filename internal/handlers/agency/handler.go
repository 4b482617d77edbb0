package agency

import (
	"net/http"

	"estate/infras/otel"
	"estate/internal/domains/agency/model"
	"estate/internal/domains/agency/model/dto"
	"estate/internal/domains/agency/service"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/validator"
	"estate/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Agency
	otel    otel.Otel
}

func New(service service.Agency, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/agencies", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAgencies)
		routerGroup.Get("/me", handler.GetMyAgency)
		routerGroup.Get("/{id}", handler.GetAgencyByID)
		routerGroup.Patch("/{id}", handler.UpdateAgency)
		routerGroup.Put("/{id}/image", handler.UpdateAgencyImage)
	})
}

// GetAgencies retrieves all agencies based on query parameters.
// @Summary Get all agencies
// @Description Retrieve all agencies with optional filtering and pagination.
// @Tags Agency
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Success 200 {object} dto.GetAgenciesResponse "List of agencies"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/agencies [get]
func (handler *Handler) GetAgencies(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAgencies")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	name := r.URL.Query().Get(model.FieldName)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	agencies, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get agencies")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Agencies retrieved successfully")

	response.WithJSON(w, http.StatusOK, agencies)
}

// GetMyAgency retrieves the agency profile of the authenticated user.
// @Summary Get my agency
// @Description Retrieve the agency profile bound to the authenticated user.
// @Tags Agency
// @Accept json
// @Produce json
// @Success 200 {object} dto.AgencyResponse "Agency details"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/agencies/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyAgency(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyAgency")
	defer scope.End()

	userID, ok := ctx.Value(constant.ContextKeyUserID).(string)
	if !ok || userID == "" {
		log.Error().Msg("failed to get user ID from context")
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	agency, err := handler.service.GetByUser(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get agency by user")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Agency retrieved successfully for user " + userID)

	response.WithJSON(w, http.StatusOK, agency)
}

// GetAgencyByID retrieves an agency by its ID.
// @Summary Get an agency by ID
// @Description Retrieve an agency by its unique identifier.
// @Tags Agency
// @Accept json
// @Produce json
// @Param id path string true "Agency ID"
// @Success 200 {object} dto.AgencyResponse "Agency details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/agencies/{id} [get]
func (handler *Handler) GetAgencyByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAgencyByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	agency, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get agency by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Agency retrieved successfully")

	response.WithJSON(w, http.StatusOK, agency)
}

// UpdateAgency updates an existing agency by its ID.
// @Summary Update an agency by ID
// @Description Update the details of an existing agency.
// @Tags Agency
// @Accept json
// @Produce json
// @Param id path string true "Agency ID"
// @Param request body dto.UpdateAgencyRequest true "Update Agency Request"
// @Success 200 {object} response.Message "Agency updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/agencies/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateAgency(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAgency")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateAgencyRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update agency")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Agency updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Agency updated successfully")
}

// UpdateAgencyImage replaces the agency image.
// @Summary Update agency image
// @Description Upload a new agency image and release the previous one.
// @Tags Agency
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Agency ID"
// @Param file formData file true "Image file to upload"
// @Success 200 {object} response.Data[string] "Image updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/agencies/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UpdateAgencyImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAgencyImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get file from form")

		response.WithError(w, err)

		return
	}
	defer file.Close()

	url, err := handler.service.UpdateImage(ctx, id, file, fileHeader)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update agency image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Agency image updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, url)
}
