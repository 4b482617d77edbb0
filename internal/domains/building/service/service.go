package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"estate/config"
	"estate/infras/otel"
	"estate/infras/postgres"
	apartmentModel "estate/internal/domains/apartment/model"
	apartmentRepo "estate/internal/domains/apartment/repository"
	"estate/internal/domains/building/model"
	"estate/internal/domains/building/model/dto"
	"estate/internal/domains/building/repository"
	"estate/shared"
	"estate/shared/cache"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBuilding    = "building:get"
	cacheGetAllBuilding = "building:gets"

	imageDirectory = "buildings"
)

type Building interface {
	Create(ctx context.Context, req dto.CreateBuildingRequest, file multipart.File, header *multipart.FileHeader) (string, error)
	Get(ctx context.Context, id string) (dto.BuildingResponse, error)
	GetDetails(ctx context.Context, id string) (dto.BuildingDetailsResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBuildingsResponse, error)
	Update(ctx context.Context, req dto.UpdateBuildingRequest, id string) error
	UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo          repository.Building
	apartmentRepo apartmentRepo.Apartment
	txn           postgres.Transactor
	imaging       imaging.Helper
	cfg           *config.Config
	cache         cache.RedisCache
	otel          otel.Otel
}

func New(
	repo repository.Building,
	apartmentRepo apartmentRepo.Apartment,
	txn postgres.Transactor,
	imaging imaging.Helper,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Building {
	return &serviceImpl{
		repo:          repo,
		apartmentRepo: apartmentRepo,
		txn:           txn,
		imaging:       imaging,
		cfg:           cfg,
		cache:         cache,
		otel:          otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBuildingRequest, file multipart.File, header *multipart.FileHeader) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	imageURL := s.imaging.Placeholder()
	if file != nil {
		imageURL, err = s.imaging.Upload(ctx, imageDirectory, file, header)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload building image")

			return constant.Empty, fmt.Errorf("failed to upload building image: %w", err)
		}
	}

	building := req.ToModel(user, imageURL)
	apartments := req.ToApartmentModels(user, building.ID)

	// The building and its full apartment grid are created atomically.
	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, building); err != nil {
			return fmt.Errorf("failed to create building: %w", err)
		}

		if err := s.apartmentRepo.InsertBulkTx(ctx, tx, apartments); err != nil {
			return fmt.Errorf("failed to create apartments: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create building")

		return constant.Empty, fmt.Errorf("failed to create building: %w", err)
	}

	s.invalidate(ctx, building.ID)

	return building.ID, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BuildingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBuilding, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for building")

		return res, nil
	}

	building, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get building")

		return res, fmt.Errorf("failed to get building: %w", err)
	}

	if building.ID == constant.Empty {
		return res, failure.NotFound("building not found") // nolint:wrapcheck
	}

	res.FromModel(building)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save building to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetDetails(ctx context.Context, id string) (res dto.BuildingDetailsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetDetails")
	defer scope.End()
	defer scope.TraceIfError(err)

	building, err := s.Get(ctx, id)
	if err != nil {
		return res, err
	}

	res.BuildingResponse = building

	total, err := s.apartmentRepo.Count(ctx, s.apartmentsFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to count apartments")

		return res, fmt.Errorf("failed to count apartments: %w", err)
	}

	res.TotalApartments = total
	res.StatusCounts = make(map[string]int)

	statuses := []string{
		apartmentModel.StatusDistributed,
		apartmentModel.StatusWaiting,
		apartmentModel.StatusUpdated,
		apartmentModel.StatusSold,
	}

	for _, status := range statuses {
		count, err := s.apartmentRepo.Count(ctx, s.apartmentsByStatusFilter(id, status))
		if err != nil {
			log.Error().Err(err).Str("status", status).Msg("failed to count apartments by status")

			return res, fmt.Errorf("failed to count apartments by status: %w", err)
		}

		res.StatusCounts[status] = count
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBuildingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBuilding, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for buildings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count buildings")

		return res, fmt.Errorf("failed to count buildings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get buildings")

		return res, fmt.Errorf("failed to get buildings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save buildings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBuildingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateBuildingRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if building exists")

		return fmt.Errorf("failed to check if building exists: %w", err)
	}

	if !exist {
		return failure.NotFound("building not found") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update building")

		return fmt.Errorf("failed to update building: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	building, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get building")

		return constant.Empty, fmt.Errorf("failed to get building: %w", err)
	}

	if building.ID == constant.Empty {
		return constant.Empty, failure.NotFound("building not found") // nolint:wrapcheck
	}

	url, err = s.imaging.Upload(ctx, imageDirectory, file, header)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload building image")

		return constant.Empty, fmt.Errorf("failed to upload building image: %w", err)
	}

	updatedFields := shared.TransformFields(struct {
		Image string `db:"image"`
	}{Image: url}, user)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update building image")

		return constant.Empty, fmt.Errorf("failed to update building image: %w", err)
	}

	// Release only after the row points at the new blob.
	s.imaging.Release(ctx, s.repo, building.Image)

	s.invalidate(ctx, id)

	return url, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if building exists")

		return fmt.Errorf("failed to check if building exists: %w", err)
	}

	if !exist {
		return failure.NotFound("building not found") // nolint:wrapcheck
	}

	sold, err := s.apartmentRepo.Count(ctx, s.apartmentsByStatusFilter(id, apartmentModel.StatusSold))
	if err != nil {
		log.Error().Err(err).Msg("failed to count sold apartments")

		return fmt.Errorf("failed to count sold apartments: %w", err)
	}

	if sold > 0 {
		return failure.Conflict("building has sold apartments") // nolint:wrapcheck
	}

	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.apartmentRepo.DeleteTx(ctx, tx, s.apartmentsFilter(id)); err != nil {
			return fmt.Errorf("failed to delete apartments: %w", err)
		}

		if err := s.repo.DeleteTx(ctx, tx, filter); err != nil {
			return fmt.Errorf("failed to delete building: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete building")

		return fmt.Errorf("failed to delete building: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) apartmentsFilter(buildingID string) gDto.FilterGroup {
	return shared.FilterByField(apartmentModel.FieldBuildingID, apartmentModel.TableName, buildingID)
}

func (s *serviceImpl) apartmentsByStatusFilter(buildingID, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    apartmentModel.FieldBuildingID,
				Operator: gDto.FilterOperatorEq,
				Value:    buildingID,
				Table:    apartmentModel.TableName,
			},
			gDto.Filter{
				Field:    apartmentModel.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    status,
				Table:    apartmentModel.TableName,
			},
		},
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBuilding, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete building from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBuilding)
	}()
}
