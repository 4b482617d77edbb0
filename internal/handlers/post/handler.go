package post

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"estate/infras/otel"
	"estate/internal/domains/post/model"
	"estate/internal/domains/post/model/dto"
	"estate/internal/domains/post/service"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/validator"
	"estate/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Post
	otel    otel.Otel
}

func New(service service.Post, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/posts", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePost)
		routerGroup.Get("/", handler.GetPosts)
		routerGroup.Get("/{id}", handler.GetPostByID)
		routerGroup.Get("/building/{id}", handler.GetPostsByBuilding)
		routerGroup.Patch("/{id}", handler.UpdatePost)
		routerGroup.Put("/{id}/image", handler.UpdatePostImage)
		routerGroup.Delete("/{id}/image", handler.ClearPostImage)
		routerGroup.Delete("/{id}", handler.DeletePost)
	})
}

// CreatePost publishes a sales post for a building.
// @Summary Create a new post
// @Description Publish a sales announcement for a building. Accepts an optional image.
// @Tags Post
// @Accept multipart/form-data
// @Produce json
// @Param building_id formData string true "Building ID"
// @Param description formData string true "Description"
// @Param priority_method formData int false "Priority method"
// @Param sales_open_at formData string true "Sales opening date (RFC3339)"
// @Param sales_close_at formData string true "Sales closing date (RFC3339)"
// @Param file formData file false "Post image"
// @Success 201 {object} dto.PostResponse "Post created successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts [post]
// @Security BearerAuth
func (handler *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePost")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	priority, _ := strconv.Atoi(r.FormValue(model.FieldPriorityMethod))
	salesOpenAt, _ := time.Parse(constant.DateFormat, r.FormValue(model.FieldSalesOpenAt))
	salesCloseAt, _ := time.Parse(constant.DateFormat, r.FormValue(model.FieldSalesCloseAt))

	req := dto.CreatePostRequest{
		BuildingID:     r.FormValue(model.FieldBuildingID),
		Description:    r.FormValue(model.FieldDescription),
		PriorityMethod: priority,
		SalesOpenAt:    salesOpenAt,
		SalesCloseAt:   salesCloseAt,
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

	post, err := handler.service.Create(ctx, req, file, fileHeader)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create post")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Post created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, post)
}

// GetPosts retrieves all posts based on query parameters.
// @Summary Get all posts
// @Description Retrieve all posts with optional filtering and pagination.
// @Tags Post
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param building_id query string false "Filter by building"
// @Param agency_id query string false "Filter by agency"
// @Success 200 {object} dto.GetPostsResponse "List of posts"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts [get]
func (handler *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPosts")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	buildingID := r.URL.Query().Get(model.FieldBuildingID)
	agencyID := r.URL.Query().Get(model.FieldAgencyID)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if buildingID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldBuildingID,
			Operator: gDto.FilterOperatorEq,
			Value:    buildingID,
			Table:    model.TableName,
		})
	}

	if agencyID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAgencyID,
			Operator: gDto.FilterOperatorEq,
			Value:    agencyID,
			Table:    model.TableName,
		})
	}

	posts, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get posts")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Posts retrieved successfully")

	response.WithJSON(w, http.StatusOK, posts)
}

// GetPostByID retrieves a post by its ID.
// @Summary Get a post by ID
// @Description Retrieve a post by its unique identifier.
// @Tags Post
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostResponse "Post details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts/{id} [get]
func (handler *Handler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPostByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	post, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get post by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Post retrieved successfully")

	response.WithJSON(w, http.StatusOK, post)
}

// GetPostsByBuilding retrieves a building's posts, newest first.
// @Summary Get posts by building
// @Description Retrieve all posts published for a building, newest first.
// @Tags Post
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} dto.GetPostsResponse "List of posts"
// @Failure 500 {object} response.Error
// @Router /v1/posts/building/{id} [get]
func (handler *Handler) GetPostsByBuilding(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPostsByBuilding")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	posts, err := handler.service.GetByBuilding(ctx, id, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get posts by building")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Posts retrieved successfully")

	response.WithJSON(w, http.StatusOK, posts)
}

// UpdatePost updates an existing post by its ID.
// @Summary Update a post by ID
// @Description Update the details of an existing post.
// @Tags Post
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.UpdatePostRequest true "Update Post Request"
// @Success 200 {object} response.Message "Post updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePost")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdatePostRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update post")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Post updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Post updated successfully")
}

// UpdatePostImage replaces the post image.
// @Summary Update post image
// @Description Upload a new post image and release the previous one.
// @Tags Post
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Post ID"
// @Param file formData file true "Image file to upload"
// @Success 200 {object} response.Data[string] "Image updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UpdatePostImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePostImage")
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
		log.Error().Err(err).Msg("failed to update post image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Post image updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, url)
}

// ClearPostImage puts the post back on the shared placeholder image.
// @Summary Clear post image
// @Description Remove the post image and release the blob when unreferenced.
// @Tags Post
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Data[string] "Image cleared successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts/{id}/image [delete]
// @Security BearerAuth
func (handler *Handler) ClearPostImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ClearPostImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	url, err := handler.service.ClearImage(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to clear post image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Post image cleared successfully by user " + user)

	response.WithJSON(w, http.StatusOK, url)
}

// DeletePost deletes a post by its ID.
// @Summary Delete a post by ID
// @Description Delete a post and release its image blob when unreferenced.
// @Tags Post
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Message "Post deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/posts/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePost")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete post")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Post deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Post deleted successfully")
}
