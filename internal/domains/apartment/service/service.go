package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"estate/config"
	"estate/infras/otel"
	"estate/internal/domains/apartment/model"
	"estate/internal/domains/apartment/model/dto"
	"estate/internal/domains/apartment/repository"
	"estate/shared"
	"estate/shared/cache"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetApartment    = "apartment:get"
	cacheGetAllApartment = "apartment:gets"

	imageDirectory = "apartments"
)

type Apartment interface {
	Get(ctx context.Context, id string) (dto.ApartmentResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetApartmentsResponse, error)
	UpdateListing(ctx context.Context, req dto.UpdateListingRequest, id string) error
	UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (string, error)
}

type serviceImpl struct {
	repo    repository.Apartment
	imaging imaging.Helper
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(repo repository.Apartment, imaging imaging.Helper, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Apartment {
	return &serviceImpl{
		repo:    repo,
		imaging: imaging,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ApartmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetApartment, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for apartment")

		return res, nil
	}

	apartment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get apartment")

		return res, fmt.Errorf("failed to get apartment: %w", err)
	}

	if apartment.ID == constant.Empty {
		return res, failure.NotFound("apartment not found") // nolint:wrapcheck
	}

	res.FromModel(apartment)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save apartment to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetApartmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllApartment, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for apartments")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count apartments")

		return res, fmt.Errorf("failed to count apartments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get apartments")

		return res, fmt.Errorf("failed to get apartments: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save apartments to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) UpdateListing(ctx context.Context, req dto.UpdateListingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateListing")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	apartment, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get apartment")

		return fmt.Errorf("failed to get apartment: %w", err)
	}

	if apartment.ID == constant.Empty {
		return failure.NotFound("apartment not found") // nolint:wrapcheck
	}

	if err := s.authorizeAgency(ctx, apartment); err != nil {
		return err
	}

	switch apartment.Status {
	case model.StatusDistributed, model.StatusWaiting, model.StatusUpdated:
	default:
		return failure.InvalidState("apartment listing cannot be updated in its current status") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	updatedFields[model.FieldStatus] = model.StatusUpdated

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update apartment listing")

		return fmt.Errorf("failed to update apartment listing: %w", err)
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

	apartment, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get apartment")

		return constant.Empty, fmt.Errorf("failed to get apartment: %w", err)
	}

	if apartment.ID == constant.Empty {
		return constant.Empty, failure.NotFound("apartment not found") // nolint:wrapcheck
	}

	if err := s.authorizeAgency(ctx, apartment); err != nil {
		return constant.Empty, err
	}

	url, err = s.imaging.Upload(ctx, imageDirectory, file, header)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload apartment image")

		return constant.Empty, fmt.Errorf("failed to upload apartment image: %w", err)
	}

	updatedFields := shared.TransformFields(struct {
		Image string `db:"image"`
	}{Image: url}, user)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update apartment image")

		return constant.Empty, fmt.Errorf("failed to update apartment image: %w", err)
	}

	// Release only after the row points at the new blob.
	s.imaging.Release(ctx, s.repo, apartment.Image)

	s.invalidate(ctx, id)

	return url, nil
}

// authorizeAgency rejects agency callers touching an apartment that is not
// assigned to them. Admins pass through.
func (s *serviceImpl) authorizeAgency(ctx context.Context, apartment model.Apartment) error {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAgency {
		return nil
	}

	agencyID, _ := ctx.Value(constant.ContextKeyAgencyID).(string)
	if apartment.AgencyID == nil || *apartment.AgencyID != agencyID {
		return failure.Forbidden("apartment is not assigned to your agency") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetApartment, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete apartment from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllApartment)
	}()
}
