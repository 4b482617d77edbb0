package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"estate/config"
	"estate/infras/otel"
	buildingModel "estate/internal/domains/building/model"
	buildingRepo "estate/internal/domains/building/repository"
	"estate/internal/domains/post/model"
	"estate/internal/domains/post/model/dto"
	"estate/internal/domains/post/repository"
	"estate/shared"
	"estate/shared/cache"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetPost    = "post:get"
	cacheGetAllPost = "post:gets"

	imageDirectory = "posts"
)

type Post interface {
	Create(ctx context.Context, req dto.CreatePostRequest, file multipart.File, header *multipart.FileHeader) (dto.PostResponse, error)
	Get(ctx context.Context, id string) (dto.PostResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPostsResponse, error)
	GetByBuilding(ctx context.Context, buildingID string, req gDto.QueryParams) (dto.GetPostsResponse, error)
	Update(ctx context.Context, req dto.UpdatePostRequest, id string) error
	UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (string, error)
	ClearImage(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Post
	buildingRepo buildingRepo.Building
	imaging      imaging.Helper
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Post,
	buildingRepo buildingRepo.Building,
	imaging imaging.Helper,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Post {
	return &serviceImpl{
		repo:         repo,
		buildingRepo: buildingRepo,
		imaging:      imaging,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePostRequest, file multipart.File, header *multipart.FileHeader) (res dto.PostResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	agencyID, _ := ctx.Value(constant.ContextKeyAgencyID).(string)
	if agencyID == constant.Empty {
		return res, failure.Forbidden("only an agency can publish a post") // nolint:wrapcheck
	}

	exist, err := s.buildingRepo.Exist(ctx, shared.FilterByID(req.BuildingID, buildingModel.FieldID, buildingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if building exists")

		return res, fmt.Errorf("failed to check if building exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("building not found") // nolint:wrapcheck
	}

	imageURL := s.imaging.Placeholder()
	if file != nil {
		imageURL, err = s.imaging.Upload(ctx, imageDirectory, file, header)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload post image")

			return res, fmt.Errorf("failed to upload post image: %w", err)
		}
	}

	post := req.ToModel(user, agencyID, imageURL)

	if err := s.repo.Insert(ctx, post); err != nil {
		log.Error().Err(err).Msg("failed to create post")

		return res, fmt.Errorf("failed to create post: %w", err)
	}

	s.invalidate(ctx, post.ID)

	res.FromModel(post)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PostResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetPost, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for post")

		return res, nil
	}

	post, err := s.getPost(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(post)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save post to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPostsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPost, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for posts")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count posts")

		return res, fmt.Errorf("failed to count posts: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get posts")

		return res, fmt.Errorf("failed to get posts: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save posts to cache")
		}
	}()

	return res, nil
}

// GetByBuilding lists a building's posts, newest first.
func (s *serviceImpl) GetByBuilding(ctx context.Context, buildingID string, req gDto.QueryParams) (res dto.GetPostsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByBuilding")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.SortBy == constant.Empty {
		req.SortBy = constant.FieldCreatedAt
		req.SortDir = gDto.SortDirDesc
	}

	return s.GetAll(ctx, req, shared.FilterByField(model.FieldBuildingID, model.TableName, buildingID))
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdatePostRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdatePostRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeAgency(ctx, post); err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update post")

		return fmt.Errorf("failed to update post: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	post, err := s.getPost(ctx, id)
	if err != nil {
		return constant.Empty, err
	}

	if err := s.authorizeAgency(ctx, post); err != nil {
		return constant.Empty, err
	}

	url, err = s.imaging.Upload(ctx, imageDirectory, file, header)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload post image")

		return constant.Empty, fmt.Errorf("failed to upload post image: %w", err)
	}

	updatedFields := shared.TransformFields(struct {
		Image string `db:"image"`
	}{Image: url}, user)

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update post image")

		return constant.Empty, fmt.Errorf("failed to update post image: %w", err)
	}

	// Release only after the row points at the new blob.
	s.imaging.Release(ctx, s.repo, post.Image)

	s.invalidate(ctx, id)

	return url, nil
}

// ClearImage puts the post back on the shared placeholder and releases the
// old blob when this was its last reference.
func (s *serviceImpl) ClearImage(ctx context.Context, id string) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ClearImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	post, err := s.getPost(ctx, id)
	if err != nil {
		return constant.Empty, err
	}

	if err := s.authorizeAgency(ctx, post); err != nil {
		return constant.Empty, err
	}

	placeholder := s.imaging.Placeholder()

	updatedFields := shared.TransformFields(struct {
		Image string `db:"image"`
	}{Image: placeholder}, user)

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to clear post image")

		return constant.Empty, fmt.Errorf("failed to clear post image: %w", err)
	}

	s.imaging.Release(ctx, s.repo, post.Image)

	s.invalidate(ctx, id)

	return placeholder, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeAgency(ctx, post); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete post")

		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.imaging.Release(ctx, s.repo, post.Image)

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) getPost(ctx context.Context, id string) (model.Post, error) {
	post, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get post")

		return post, fmt.Errorf("failed to get post: %w", err)
	}

	if post.ID == constant.Empty {
		return post, failure.NotFound("post not found") // nolint:wrapcheck
	}

	return post, nil
}

// authorizeAgency rejects agency callers touching another agency's post.
// Admins pass through.
func (s *serviceImpl) authorizeAgency(ctx context.Context, post model.Post) error {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAgency {
		return nil
	}

	agencyID, _ := ctx.Value(constant.ContextKeyAgencyID).(string)
	if post.AgencyID != agencyID {
		return failure.Forbidden("post does not belong to your agency") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetPost, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete post from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllPost)
	}()
}
