package building

import (
	"errors"
	"net/http"
	"strconv"

	"estate/infras/otel"
	"estate/internal/domains/building/model"
	"estate/internal/domains/building/model/dto"
	"estate/internal/domains/building/service"
	lifecycleDto "estate/internal/domains/lifecycle/model/dto"
	lifecycleService "estate/internal/domains/lifecycle/service"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/validator"
	"estate/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service   service.Building
	lifecycle lifecycleService.Lifecycle
	otel      otel.Otel
}

func New(service service.Building, lifecycle lifecycleService.Lifecycle, otel otel.Otel) Handler {
	return Handler{
		service:   service,
		lifecycle: lifecycle,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/buildings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBuilding)
		routerGroup.Get("/", handler.GetBuildings)
		routerGroup.Get("/{id}", handler.GetBuildingByID)
		routerGroup.Get("/{id}/details", handler.GetBuildingDetails)
		routerGroup.Patch("/{id}", handler.UpdateBuilding)
		routerGroup.Put("/{id}/image", handler.UpdateBuildingImage)
		routerGroup.Delete("/{id}", handler.DeleteBuilding)
		routerGroup.Post("/{id}/distribute", handler.DistributeFloor)
	})
}

// CreateBuilding handles the creation of a new building with its apartments.
// @Summary Create a new building
// @Description Create a building and bulk-create one apartment per floor unit. Accepts an optional image.
// @Tags Building
// @Accept multipart/form-data
// @Produce json
// @Param project_name formData string true "Project name"
// @Param address formData string true "Address"
// @Param floors formData int true "Number of floors"
// @Param apartments_per_floor formData int true "Apartments per floor"
// @Param file formData file false "Building image"
// @Success 201 {object} response.Data[string] "Building created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings [post]
// @Security BearerAuth
func (handler *Handler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBuilding")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	floors, _ := strconv.Atoi(r.FormValue(model.FieldFloors))
	perFloor, _ := strconv.Atoi(r.FormValue(model.FieldApartmentsPerFloor))

	req := dto.CreateBuildingRequest{
		ProjectName:        r.FormValue(model.FieldProjectName),
		Address:            r.FormValue(model.FieldAddress),
		Floors:             floors,
		ApartmentsPerFloor: perFloor,
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get file from form")

		response.WithError(w, err)

		return
	}

	if file != nil {
		defer file.Close()
	}

	id, err := handler.service.Create(ctx, req, file, fileHeader)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create building")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Building created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, id)
}

// GetBuildings retrieves all buildings based on query parameters.
// @Summary Get all buildings
// @Description Retrieve all buildings with optional filtering and pagination.
// @Tags Building
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param project_name query string false "Filter by project name"
// @Param address query string false "Filter by address"
// @Success 200 {object} dto.GetBuildingsResponse "List of buildings"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings [get]
func (handler *Handler) GetBuildings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBuildings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	projectName := r.URL.Query().Get(model.FieldProjectName)
	address := r.URL.Query().Get(model.FieldAddress)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if projectName != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldProjectName,
			Operator: gDto.FilterOperatorLike,
			Value:    projectName,
			Table:    model.TableName,
		})
	}

	if address != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAddress,
			Operator: gDto.FilterOperatorLike,
			Value:    address,
			Table:    model.TableName,
		})
	}

	buildings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get buildings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Buildings retrieved successfully")

	response.WithJSON(w, http.StatusOK, buildings)
}

// GetBuildingByID retrieves a building by its ID.
// @Summary Get a building by ID
// @Description Retrieve a building by its unique identifier.
// @Tags Building
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} dto.BuildingResponse "Building details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings/{id} [get]
func (handler *Handler) GetBuildingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBuildingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	building, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get building by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Building retrieved successfully")

	response.WithJSON(w, http.StatusOK, building)
}

// GetBuildingDetails retrieves a building with its apartment counts.
// @Summary Get building details
// @Description Retrieve a building with apartment totals per status.
// @Tags Building
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} dto.BuildingDetailsResponse "Building details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings/{id}/details [get]
func (handler *Handler) GetBuildingDetails(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBuildingDetails")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	details, err := handler.service.GetDetails(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get building details")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Building details retrieved successfully")

	response.WithJSON(w, http.StatusOK, details)
}

// UpdateBuilding updates an existing building by its ID.
// @Summary Update a building by ID
// @Description Update the details of an existing building.
// @Tags Building
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param request body dto.UpdateBuildingRequest true "Update Building Request"
// @Success 200 {object} response.Message "Building updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateBuilding(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBuilding")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateBuildingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update building")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Building updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Building updated successfully")
}

// UpdateBuildingImage replaces the building image.
// @Summary Update building image
// @Description Upload a new building image and release the previous one.
// @Tags Building
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Building ID"
// @Param file formData file true "Image file to upload"
// @Success 200 {object} response.Data[string] "Image updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UpdateBuildingImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBuildingImage")
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
		log.Error().Err(err).Msg("failed to update building image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Building image updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, url)
}

// DeleteBuilding deletes a building and its apartments.
// @Summary Delete a building by ID
// @Description Delete a building and every apartment in it. Rejected when any apartment is sold.
// @Tags Building
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Message "Building deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBuilding")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete building")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Building deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Building deleted successfully")
}

// DistributeFloor hands every apartment on a floor to an agency.
// @Summary Distribute a floor to an agency
// @Description Assign all apartments on the given floor to an agency with a base price.
// @Tags Building
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param request body lifecycleDto.DistributeFloorRequest true "Distribute Floor Request"
// @Success 200 {object} response.Message "Floor distributed successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/buildings/{id}/distribute [post]
// @Security BearerAuth
func (handler *Handler) DistributeFloor(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DistributeFloor")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := lifecycleDto.DistributeFloorRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.lifecycle.DistributeFloor(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to distribute floor")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Floor distributed successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Floor distributed successfully")
}
