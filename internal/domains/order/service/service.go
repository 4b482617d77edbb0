package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"estate/config"
	"estate/infras/otel"
	apartmentModel "estate/internal/domains/apartment/model"
	apartmentRepo "estate/internal/domains/apartment/repository"
	bookingModel "estate/internal/domains/booking/model"
	bookingRepo "estate/internal/domains/booking/repository"
	"estate/internal/domains/order/model"
	"estate/internal/domains/order/model/dto"
	"estate/internal/domains/order/repository"
	"estate/shared"
	"estate/shared/cache"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetOrder    = "order:get"
	cacheGetAllOrder = "order:gets"

	imageDirectory = "orders"
)

// Order covers the read and bookkeeping paths. Creating and reversing orders
// belongs to the lifecycle service.
type Order interface {
	Get(ctx context.Context, id string) (dto.OrderResponse, error)
	GetByCustomer(ctx context.Context, customerID string, req gDto.QueryParams) (dto.GetOrdersResponse, error)
	GetByAgency(ctx context.Context, agencyID string, req gDto.QueryParams) (dto.GetOrdersResponse, error)
	GetWaiting(ctx context.Context, req gDto.QueryParams) (dto.GetOrdersResponse, error)
	GetBilling(ctx context.Context, id string) (dto.BillingResponse, error)
	GetRemaining(ctx context.Context, id string) (dto.RemainingResponse, error)
	ChangeStatus(ctx context.Context, req dto.UpdateOrderStatusRequest, id string) error
	UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (string, error)
}

type serviceImpl struct {
	repo          repository.Order
	bookingRepo   bookingRepo.Booking
	apartmentRepo apartmentRepo.Apartment
	imaging       imaging.Helper
	cfg           *config.Config
	cache         cache.RedisCache
	otel          otel.Otel
}

func New(
	repo repository.Order,
	bookingRepo bookingRepo.Booking,
	apartmentRepo apartmentRepo.Apartment,
	imaging imaging.Helper,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Order {
	return &serviceImpl{
		repo:          repo,
		bookingRepo:   bookingRepo,
		apartmentRepo: apartmentRepo,
		imaging:       imaging,
		cfg:           cfg,
		cache:         cache,
		otel:          otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.OrderResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetOrder, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for order")

		return res, nil
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(order)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save order to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetByCustomer(ctx context.Context, customerID string, req gDto.QueryParams) (res dto.GetOrdersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByCustomer")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.getAll(ctx, req, shared.FilterByField(model.FieldCustomerID, model.TableName, customerID))
}

func (s *serviceImpl) GetByAgency(ctx context.Context, agencyID string, req gDto.QueryParams) (res dto.GetOrdersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByAgency")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.getAll(ctx, req, shared.FilterByField(model.FieldAgencyID, model.TableName, agencyID))
}

func (s *serviceImpl) GetWaiting(ctx context.Context, req gDto.QueryParams) (res dto.GetOrdersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetWaiting")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.getAll(ctx, req, shared.FilterByField(model.FieldStatus, model.TableName, model.StatusWaiting))
}

func (s *serviceImpl) getAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetOrdersResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllOrder, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for orders")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count orders")

		return res, fmt.Errorf("failed to count orders: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get orders")

		return res, fmt.Errorf("failed to get orders: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save orders to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetBilling(ctx context.Context, id string) (res dto.BillingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBilling")
	defer scope.End()
	defer scope.TraceIfError(err)

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return res, err
	}

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(order.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModels(order, booking)

	return res, nil
}

func (s *serviceImpl) GetRemaining(ctx context.Context, id string) (res dto.RemainingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetRemaining")
	defer scope.End()
	defer scope.TraceIfError(err)

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return res, err
	}

	apartment, err := s.apartmentRepo.Get(ctx, shared.FilterByID(order.ApartmentID, apartmentModel.FieldID, apartmentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get apartment")

		return res, fmt.Errorf("failed to get apartment: %w", err)
	}

	if apartment.ID == constant.Empty {
		return res, failure.NotFound("apartment not found") // nolint:wrapcheck
	}

	res.OrderID = order.ID
	res.ApartmentPrice = apartment.Price
	res.OrderTotal = order.Total
	res.Remaining = apartment.Price - order.Total

	return res, nil
}

func (s *serviceImpl) ChangeStatus(ctx context.Context, req dto.UpdateOrderStatusRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangeStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !model.ValidStatus(req.Status) {
		return failure.BadRequestFromString("unknown order status") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return err
	}

	updatedFields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: req.Status}, user)

	// Moving to Waiting finalizes the amount against the current listing price.
	if req.Status == model.StatusWaiting {
		apartment, err := s.apartmentRepo.Get(ctx, shared.FilterByID(order.ApartmentID, apartmentModel.FieldID, apartmentModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get apartment")

			return fmt.Errorf("failed to get apartment: %w", err)
		}

		if apartment.ID == constant.Empty {
			return failure.NotFound("apartment not found") // nolint:wrapcheck
		}

		updatedFields[model.FieldTotal] = apartment.Price
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update order status")

		return fmt.Errorf("failed to update order status: %w", err)
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

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return constant.Empty, err
	}

	url, err = s.imaging.Upload(ctx, imageDirectory, file, header)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload order image")

		return constant.Empty, fmt.Errorf("failed to upload order image: %w", err)
	}

	updatedFields := shared.TransformFields(struct {
		Image string `db:"image"`
	}{Image: url}, user)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update order image")

		return constant.Empty, fmt.Errorf("failed to update order image: %w", err)
	}

	// Release only after the row points at the new blob.
	s.imaging.Release(ctx, s.repo, order.Image)

	s.invalidate(ctx, id)

	return url, nil
}

func (s *serviceImpl) getOrder(ctx context.Context, id string) (model.Order, error) {
	order, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get order")

		return order, fmt.Errorf("failed to get order: %w", err)
	}

	if order.ID == constant.Empty {
		return order, failure.NotFound("order not found") // nolint:wrapcheck
	}

	return order, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetOrder, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete order from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllOrder)
	}()
}
