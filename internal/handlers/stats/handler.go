package stats

import (
	"net/http"

	"estate/infras/otel"
	"estate/internal/domains/stats/service"
	"estate/shared/constant"
	"estate/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Stats
	otel    otel.Otel
}

func New(service service.Stats, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/stats", func(routerGroup chi.Router) {
		routerGroup.Get("/buildings/{id}/apartments", handler.GetBuildingApartments)
		routerGroup.Get("/agencies/{id}/sales", handler.GetAgencySales)
	})
}

// GetBuildingApartments reports apartment counts per status for a building.
// @Summary Get building apartment stats
// @Description Retrieve apartment counts grouped by status for a building.
// @Tags Stats
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} dto.BuildingApartmentStats "Apartment stats"
// @Failure 500 {object} response.Error
// @Router /v1/stats/buildings/{id}/apartments [get]
// @Security BearerAuth
func (handler *Handler) GetBuildingApartments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBuildingApartments")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	stats, err := handler.service.BuildingApartments(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get building apartment stats")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Building apartment stats retrieved successfully")

	response.WithJSON(w, http.StatusOK, stats)
}

// GetAgencySales reports the sales totals of an agency.
// @Summary Get agency sales stats
// @Description Retrieve paid sales count, revenue and waiting orders for an agency.
// @Tags Stats
// @Accept json
// @Produce json
// @Param id path string true "Agency ID"
// @Success 200 {object} dto.AgencySalesStats "Sales stats"
// @Failure 500 {object} response.Error
// @Router /v1/stats/agencies/{id}/sales [get]
// @Security BearerAuth
func (handler *Handler) GetAgencySales(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAgencySales")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	stats, err := handler.service.AgencySales(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get agency sales stats")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Agency sales stats retrieved successfully")

	response.WithJSON(w, http.StatusOK, stats)
}
