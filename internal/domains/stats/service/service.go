package service

import (
	"context"
	"fmt"

	"estate/infras/otel"
	"estate/infras/postgres"
	"estate/internal/domains/stats/model/dto"
	"estate/shared/constant"

	"github.com/rs/zerolog/log"
)

// Stats runs read-only reporting queries straight against the read replica.
// Aggregations do not go through the generic repository.
type Stats interface {
	BuildingApartments(ctx context.Context, buildingID string) (dto.BuildingApartmentStats, error)
	AgencySales(ctx context.Context, agencyID string) (dto.AgencySalesStats, error)
}

type serviceImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Stats {
	return &serviceImpl{
		db:   db,
		otel: otel,
	}
}

const queryApartmentsByStatus = `
SELECT COALESCE(NULLIF(status, ''), 'New') AS status, COUNT(id) AS count
FROM apartments
WHERE building_id = $1
GROUP BY COALESCE(NULLIF(status, ''), 'New')
ORDER BY status`

const queryAgencySales = `
SELECT
	COUNT(o.id) FILTER (WHERE o.status = 'Paid')    AS sold_count,
	COALESCE(SUM(o.total) FILTER (WHERE o.status = 'Paid'), 0) AS total_revenue,
	COUNT(o.id) FILTER (WHERE o.status = 'Waiting') AS waiting_orders
FROM orders o
WHERE o.agency_id = $1`

func (s *serviceImpl) BuildingApartments(ctx context.Context, buildingID string) (res dto.BuildingApartmentStats, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BuildingApartments")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryApartmentsByStatus)

	var counts []dto.ApartmentStatusCount

	if err = s.db.Read.SelectContext(ctx, &counts, queryApartmentsByStatus, buildingID); err != nil {
		log.Error().Err(err).Str("building_id", buildingID).Msg("failed to count apartments by status")

		return res, fmt.Errorf("failed to count apartments by status: %w", err)
	}

	res.BuildingID = buildingID
	res.ByStatus = counts

	for _, c := range counts {
		res.TotalApartments += c.Count
	}

	return res, nil
}

func (s *serviceImpl) AgencySales(ctx context.Context, agencyID string) (res dto.AgencySalesStats, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AgencySales")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryAgencySales)

	if err = s.db.Read.GetContext(ctx, &res, queryAgencySales, agencyID); err != nil {
		log.Error().Err(err).Str("agency_id", agencyID).Msg("failed to get agency sales")

		return res, fmt.Errorf("failed to get agency sales: %w", err)
	}

	res.AgencyID = agencyID

	return res, nil
}
