package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"estate/config"
	"estate/infras/otel"
	"estate/internal/domains/agency/model"
	"estate/internal/domains/agency/model/dto"
	"estate/internal/domains/agency/repository"
	"estate/shared"
	"estate/shared/cache"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAgency    = "agency:get"
	cacheGetAllAgency = "agency:gets"

	imageDirectory = "agencies"
)

type Agency interface {
	Get(ctx context.Context, id string) (dto.AgencyResponse, error)
	GetByUser(ctx context.Context, userID string) (dto.AgencyResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAgenciesResponse, error)
	Update(ctx context.Context, req dto.UpdateAgencyRequest, id string) error
	UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (string, error)
}

type serviceImpl struct {
	repo    repository.Agency
	imaging imaging.Helper
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(repo repository.Agency, imaging imaging.Helper, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Agency {
	return &serviceImpl{
		repo:    repo,
		imaging: imaging,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AgencyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetAgency, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for agency")

		return res, nil
	}

	agency, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get agency")

		return res, fmt.Errorf("failed to get agency: %w", err)
	}

	if agency.ID == constant.Empty {
		return res, failure.NotFound("agency not found") // nolint:wrapcheck
	}

	res.FromModel(agency)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save agency to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetByUser(ctx context.Context, userID string) (res dto.AgencyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByUser")
	defer scope.End()
	defer scope.TraceIfError(err)

	agency, err := s.repo.Get(ctx, shared.FilterByField(model.FieldUserID, model.TableName, userID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get agency by user")

		return res, fmt.Errorf("failed to get agency by user: %w", err)
	}

	if agency.ID == constant.Empty {
		return res, failure.NotFound("agency not found") // nolint:wrapcheck
	}

	res.FromModel(agency)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAgenciesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllAgency, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for agencies")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count agencies")

		return res, fmt.Errorf("failed to count agencies: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get agencies")

		return res, fmt.Errorf("failed to get agencies: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save agencies to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateAgencyRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateAgencyRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if agency exists")

		return fmt.Errorf("failed to check if agency exists: %w", err)
	}

	if !exist {
		return failure.NotFound("agency not found") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update agency")

		return fmt.Errorf("failed to update agency: %w", err)
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

	agency, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get agency")

		return constant.Empty, fmt.Errorf("failed to get agency: %w", err)
	}

	if agency.ID == constant.Empty {
		return constant.Empty, failure.NotFound("agency not found") // nolint:wrapcheck
	}

	url, err = s.imaging.Upload(ctx, imageDirectory, file, header)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload agency image")

		return constant.Empty, fmt.Errorf("failed to upload agency image: %w", err)
	}

	updatedFields := shared.TransformFields(struct {
		Image string `db:"image"`
	}{Image: url}, user)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update agency image")

		return constant.Empty, fmt.Errorf("failed to update agency image: %w", err)
	}

	// Release only after the row points at the new blob.
	s.imaging.Release(ctx, s.repo, agency.Image)

	s.invalidate(ctx, id)

	return url, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetAgency, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete agency from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllAgency)
	}()
}
