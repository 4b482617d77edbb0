package apartment

import (
	"net/http"
	"strconv"

	"estate/infras/otel"
	"estate/internal/domains/apartment/model"
	"estate/internal/domains/apartment/model/dto"
	"estate/internal/domains/apartment/service"
	lifecycleDto "estate/internal/domains/lifecycle/model/dto"
	lifecycleService "estate/internal/domains/lifecycle/service"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/validator"
	"estate/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryParamPriceMin = "price_min"
	queryParamPriceMax = "price_max"
)

type Handler struct {
	service   service.Apartment
	lifecycle lifecycleService.Lifecycle
	otel      otel.Otel
}

func New(service service.Apartment, lifecycle lifecycleService.Lifecycle, otel otel.Otel) Handler {
	return Handler{
		service:   service,
		lifecycle: lifecycle,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/apartments", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetApartments)
		routerGroup.Get("/{id}", handler.GetApartmentByID)
		routerGroup.Patch("/{id}", handler.UpdateListing)
		routerGroup.Patch("/{id}/status", handler.ChangeStatus)
		routerGroup.Put("/{id}/image", handler.UpdateApartmentImage)
	})
}

// GetApartments retrieves all apartments based on query parameters.
// @Summary Get all apartments
// @Description Retrieve apartments with filtering on building, agency, status, rooms and price range.
// @Tags Apartment
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param building_id query string false "Filter by building ID"
// @Param agency_id query string false "Filter by agency ID"
// @Param status query string false "Filter by status"
// @Param bedrooms query int false "Filter by bedroom count"
// @Param bathrooms query int false "Filter by bathroom count"
// @Param price_min query number false "Minimum price"
// @Param price_max query number false "Maximum price"
// @Success 200 {object} dto.GetApartmentsResponse "List of apartments"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/apartments [get]
func (handler *Handler) GetApartments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetApartments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	equalityFields := []string{model.FieldBuildingID, model.FieldAgencyID, model.FieldStatus}
	for _, field := range equalityFields {
		if value := r.URL.Query().Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	countFields := []string{model.FieldBedrooms, model.FieldBathrooms}
	for _, field := range countFields {
		if value := r.URL.Query().Get(field); value != "" {
			if count, err := strconv.Atoi(value); err == nil {
				filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
					Field:    field,
					Operator: gDto.FilterOperatorEq,
					Value:    count,
					Table:    model.TableName,
				})
			}
		}
	}

	if value := r.URL.Query().Get(queryParamPriceMin); value != "" {
		if price, err := strconv.ParseFloat(value, 64); err == nil {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    model.FieldPrice,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    price,
				Table:    model.TableName,
				ArgName:  queryParamPriceMin,
			})
		}
	}

	if value := r.URL.Query().Get(queryParamPriceMax); value != "" {
		if price, err := strconv.ParseFloat(value, 64); err == nil {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    model.FieldPrice,
				Operator: gDto.FilterOperatorLessEq,
				Value:    price,
				Table:    model.TableName,
				ArgName:  queryParamPriceMax,
			})
		}
	}

	apartments, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get apartments")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Apartments retrieved successfully")

	response.WithJSON(w, http.StatusOK, apartments)
}

// GetApartmentByID retrieves an apartment by its ID.
// @Summary Get an apartment by ID
// @Description Retrieve an apartment by its unique identifier.
// @Tags Apartment
// @Accept json
// @Produce json
// @Param id path string true "Apartment ID"
// @Success 200 {object} dto.ApartmentResponse "Apartment details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/apartments/{id} [get]
func (handler *Handler) GetApartmentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetApartmentByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	apartment, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get apartment by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Apartment retrieved successfully")

	response.WithJSON(w, http.StatusOK, apartment)
}

// UpdateListing updates the listing details of an apartment.
// @Summary Update apartment listing
// @Description Update listing details of an apartment and mark it as listed.
// @Tags Apartment
// @Accept json
// @Produce json
// @Param id path string true "Apartment ID"
// @Param request body dto.UpdateListingRequest true "Update Listing Request"
// @Success 200 {object} response.Message "Apartment listing updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/apartments/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateListing")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateListingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.UpdateListing(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update apartment listing")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Apartment listing updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Apartment listing updated successfully")
}

// ChangeStatus moves an apartment to another status.
// @Summary Change apartment status
// @Description Admin override for the apartment status. Moving back to Distributed wipes the listing.
// @Tags Apartment
// @Accept json
// @Produce json
// @Param id path string true "Apartment ID"
// @Param request body lifecycleDto.ChangeApartmentStatusRequest true "Change Status Request"
// @Success 200 {object} response.Message "Apartment status changed successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/apartments/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangeStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := lifecycleDto.ChangeApartmentStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.lifecycle.ChangeApartmentStatus(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to change apartment status")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Apartment status changed successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Apartment status changed successfully")
}

// UpdateApartmentImage replaces the apartment image.
// @Summary Update apartment image
// @Description Upload a new apartment image and release the previous one.
// @Tags Apartment
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Apartment ID"
// @Param file formData file true "Image file to upload"
// @Success 200 {object} response.Data[string] "Image updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/apartments/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UpdateApartmentImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateApartmentImage")
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
		log.Error().Err(err).Msg("failed to update apartment image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Apartment image updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, url)
}
