package service

import (
	"context"
	"fmt"

	"estate/config"
	"estate/infras/kafka"
	"estate/infras/otel"
	"estate/infras/postgres"
	agencyModel "estate/internal/domains/agency/model"
	agencyRepo "estate/internal/domains/agency/repository"
	apartmentModel "estate/internal/domains/apartment/model"
	apartmentRepo "estate/internal/domains/apartment/repository"
	bookingModel "estate/internal/domains/booking/model"
	bookingDto "estate/internal/domains/booking/model/dto"
	bookingRepo "estate/internal/domains/booking/repository"
	"estate/internal/domains/lifecycle/model/dto"
	orderModel "estate/internal/domains/order/model"
	orderDto "estate/internal/domains/order/model/dto"
	orderRepo "estate/internal/domains/order/repository"
	"estate/shared"
	"estate/shared/cache"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Lifecycle owns every transition that moves money or apartment status. Each
// operation runs in a single transaction and locks the apartment row first so
// concurrent bookings serialize on it.
type Lifecycle interface {
	CreateBooking(ctx context.Context, req bookingDto.CreateBookingRequest, customerID string) (bookingDto.BookingResponse, error)
	CompleteBooking(ctx context.Context, bookingID string) (orderDto.OrderResponse, error)
	ReverseOrder(ctx context.Context, bookingID string) error
	ChangeApartmentStatus(ctx context.Context, req dto.ChangeApartmentStatusRequest, apartmentID string) error
	DistributeFloor(ctx context.Context, req dto.DistributeFloorRequest, buildingID string) error
}

type serviceImpl struct {
	apartmentRepo apartmentRepo.Apartment
	bookingRepo   bookingRepo.Booking
	orderRepo     orderRepo.Order
	agencyRepo    agencyRepo.Agency
	txn           postgres.Transactor
	events        kafka.Client
	imaging       imaging.Helper
	cfg           *config.Config
	cache         cache.RedisCache
	otel          otel.Otel
}

func New(
	apartmentRepo apartmentRepo.Apartment,
	bookingRepo bookingRepo.Booking,
	orderRepo orderRepo.Order,
	agencyRepo agencyRepo.Agency,
	txn postgres.Transactor,
	events kafka.Client,
	imaging imaging.Helper,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Lifecycle {
	return &serviceImpl{
		apartmentRepo: apartmentRepo,
		bookingRepo:   bookingRepo,
		orderRepo:     orderRepo,
		agencyRepo:    agencyRepo,
		txn:           txn,
		events:        events,
		imaging:       imaging,
		cfg:           cfg,
		cache:         cache,
		otel:          otel,
	}
}

func (s *serviceImpl) CreateBooking(ctx context.Context, req bookingDto.CreateBookingRequest, customerID string) (res bookingDto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateBooking")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var booking bookingModel.Booking

	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		apartment, err := s.lockApartment(ctx, tx, req.ApartmentID)
		if err != nil {
			return err
		}

		if apartment.Status == apartmentModel.StatusSold {
			return failure.Conflict("apartment is already sold") // nolint:wrapcheck
		}

		// Any distributed apartment is bookable; only unassigned stock is not.
		if apartment.AgencyID == nil {
			return failure.Conflict("apartment has not been distributed to an agency") // nolint:wrapcheck
		}

		mine, err := s.bookingRepo.CountTx(ctx, tx, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{
					Field:    bookingModel.FieldApartmentID,
					Operator: gDto.FilterOperatorEq,
					Value:    req.ApartmentID,
					Table:    bookingModel.TableName,
				},
				gDto.Filter{
					Field:    bookingModel.FieldCustomerID,
					Operator: gDto.FilterOperatorEq,
					Value:    customerID,
					Table:    bookingModel.TableName,
				},
				gDto.Filter{
					Field:    bookingModel.FieldStatus,
					Operator: gDto.FilterOperatorIn,
					Value:    []any{bookingModel.StatusActive, bookingModel.StatusComplete},
					Table:    bookingModel.TableName,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to count customer bookings: %w", err)
		}

		if mine > 0 {
			return failure.Conflict("you already have a booking on this apartment") // nolint:wrapcheck
		}

		active, err := s.bookingRepo.CountTx(ctx, tx, s.activeBookingsFilter(req.ApartmentID))
		if err != nil {
			return fmt.Errorf("failed to count active bookings: %w", err)
		}

		if active > 0 {
			return failure.Conflict("apartment already has an active booking") // nolint:wrapcheck
		}

		booking = req.ToModel(user, customerID, *apartment.AgencyID)

		if err := s.bookingRepo.InsertTx(ctx, tx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("apartment_id", req.ApartmentID).Msg("failed to create booking")

		return res, err
	}

	s.invalidate(ctx)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) CompleteBooking(ctx context.Context, bookingID string) (res orderDto.OrderResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CompleteBooking")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var order orderModel.Order

	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		booking, err := s.bookingRepo.GetTx(ctx, tx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		if booking.Status != bookingModel.StatusActive {
			return failure.InvalidState("only an active booking can be completed") // nolint:wrapcheck
		}

		apartment, err := s.lockApartment(ctx, tx, booking.ApartmentID)
		if err != nil {
			return err
		}

		if err := s.bookingRepo.UpdateTx(ctx, tx, s.statusFields(bookingModel.StatusComplete, user),
			shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName)); err != nil {
			return fmt.Errorf("failed to complete booking: %w", err)
		}

		// Losing bidders are parked as Closed so a reversal can bring them back.
		if err := s.bookingRepo.UpdateTx(ctx, tx, s.statusFields(bookingModel.StatusClosed, user),
			s.siblingFilter(booking.ApartmentID, booking.ID, bookingModel.StatusActive)); err != nil {
			return fmt.Errorf("failed to close sibling bookings: %w", err)
		}

		order = orderModel.Order{
			ID:          uuid.NewString(),
			BookingID:   booking.ID,
			ApartmentID: booking.ApartmentID,
			CustomerID:  booking.CustomerID,
			AgencyID:    booking.AgencyID,
			Total:       booking.Money,
			Status:      orderModel.StatusUnpaid,
			PrevStatus:  apartment.Status,
			Image:       constant.ImagePlaceholder,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  user,
				ModifiedBy: user,
			},
		}

		if err := s.orderRepo.InsertTx(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		fields := s.statusFields(apartmentModel.StatusSold, user)
		if err := s.apartmentRepo.UpdateTx(ctx, tx, fields,
			shared.FilterByID(apartment.ID, apartmentModel.FieldID, apartmentModel.TableName)); err != nil {
			return fmt.Errorf("failed to mark apartment sold: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to complete booking")

		return res, err
	}

	s.invalidate(ctx)
	s.publish(ctx, constant.EventOrderCreated, order)

	res.FromModel(order)

	return res, nil
}

func (s *serviceImpl) ReverseOrder(ctx context.Context, bookingID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ReverseOrder")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var order orderModel.Order

	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		booking, err := s.bookingRepo.GetTx(ctx, tx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		if booking.Status != bookingModel.StatusComplete {
			return failure.InvalidState("only a completed booking can be reversed") // nolint:wrapcheck
		}

		order, err = s.orderRepo.GetTx(ctx, tx, shared.FilterByField(orderModel.FieldBookingID, orderModel.TableName, booking.ID))
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		if order.ID == constant.Empty {
			return failure.NotFound("order not found") // nolint:wrapcheck
		}

		if _, err := s.lockApartment(ctx, tx, booking.ApartmentID); err != nil {
			return err
		}

		if err := s.orderRepo.DeleteTx(ctx, tx,
			shared.FilterByID(order.ID, orderModel.FieldID, orderModel.TableName)); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}

		if err := s.bookingRepo.UpdateTx(ctx, tx, s.statusFields(bookingModel.StatusBookingFails, user),
			shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName)); err != nil {
			return fmt.Errorf("failed to fail booking: %w", err)
		}

		// Only bookings parked by this sale come back. Anything created after
		// the sale stays untouched.
		reactivate := s.siblingFilter(booking.ApartmentID, booking.ID, bookingModel.StatusClosed)
		reactivate.Filters = append(reactivate.Filters, gDto.Filter{
			Field:    constant.FieldCreatedAt,
			Operator: gDto.FilterOperatorLessEq,
			Value:    order.CreatedAt,
			Table:    bookingModel.TableName,
		})

		if err := s.bookingRepo.UpdateTx(ctx, tx, s.statusFields(bookingModel.StatusActive, user), reactivate); err != nil {
			return fmt.Errorf("failed to reactivate sibling bookings: %w", err)
		}

		if err := s.apartmentRepo.UpdateTx(ctx, tx, s.statusFields(order.PrevStatus, user),
			shared.FilterByID(booking.ApartmentID, apartmentModel.FieldID, apartmentModel.TableName)); err != nil {
			return fmt.Errorf("failed to restore apartment status: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to reverse order")

		return err
	}

	s.invalidate(ctx)
	s.publish(ctx, constant.EventOrderReversed, order)

	return nil
}

func (s *serviceImpl) ChangeApartmentStatus(ctx context.Context, req dto.ChangeApartmentStatusRequest, apartmentID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangeApartmentStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !apartmentModel.ValidStatus(req.Status) {
		return failure.BadRequestFromString("unknown apartment status") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var previousImage string

	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		apartment, err := s.lockApartment(ctx, tx, apartmentID)
		if err != nil {
			return err
		}

		fields := s.statusFields(req.Status, user)

		// Handing an apartment back to distribution wipes its listing.
		if req.Status == apartmentModel.StatusDistributed {
			fields[apartmentModel.FieldArea] = 0
			fields[apartmentModel.FieldPrice] = 0
			fields[apartmentModel.FieldBedrooms] = 0
			fields[apartmentModel.FieldBathrooms] = 0
			fields[apartmentModel.FieldFurniture] = constant.Empty
			fields[apartmentModel.FieldDescription] = constant.Empty
			fields[apartmentModel.FieldImage] = s.imaging.Placeholder()

			previousImage = apartment.Image
		}

		if err := s.apartmentRepo.UpdateTx(ctx, tx, fields,
			shared.FilterByID(apartmentID, apartmentModel.FieldID, apartmentModel.TableName)); err != nil {
			return fmt.Errorf("failed to update apartment status: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("apartment_id", apartmentID).Msg("failed to change apartment status")

		return err
	}

	if previousImage != constant.Empty {
		s.imaging.Release(ctx, s.apartmentRepo, previousImage)
	}

	s.invalidate(ctx)

	return nil
}

func (s *serviceImpl) DistributeFloor(ctx context.Context, req dto.DistributeFloorRequest, buildingID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DistributeFloor")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	exist, err := s.agencyRepo.Exist(ctx, shared.FilterByID(req.AgencyID, agencyModel.FieldID, agencyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if agency exists")

		return fmt.Errorf("failed to check if agency exists: %w", err)
	}

	if !exist {
		return failure.NotFound("agency not found") // nolint:wrapcheck
	}

	floorFilter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    apartmentModel.FieldBuildingID,
				Operator: gDto.FilterOperatorEq,
				Value:    buildingID,
				Table:    apartmentModel.TableName,
			},
			gDto.Filter{
				Field:    apartmentModel.FieldFloor,
				Operator: gDto.FilterOperatorEq,
				Value:    req.Floor,
				Table:    apartmentModel.TableName,
			},
		},
	}

	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		apartments, err := s.apartmentRepo.GetAllTx(ctx, tx, gDto.QueryParams{}, floorFilter)
		if err != nil {
			return fmt.Errorf("failed to get floor apartments: %w", err)
		}

		if len(apartments) == 0 {
			return failure.NotFound("no apartments on this floor") // nolint:wrapcheck
		}

		for _, apartment := range apartments {
			if apartment.Status == apartmentModel.StatusSold {
				return failure.Conflict("floor has sold apartments") // nolint:wrapcheck
			}
		}

		fields := s.statusFields(apartmentModel.StatusDistributed, user)
		fields[apartmentModel.FieldAgencyID] = req.AgencyID
		fields[apartmentModel.FieldPrice] = req.Price

		if err := s.apartmentRepo.UpdateTx(ctx, tx, fields, floorFilter); err != nil {
			return fmt.Errorf("failed to distribute floor: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("building_id", buildingID).Int("floor", req.Floor).Msg("failed to distribute floor")

		return err
	}

	s.invalidate(ctx)

	return nil
}

// lockApartment reads the apartment under FOR UPDATE, pinning the row for the
// rest of the transaction.
func (s *serviceImpl) lockApartment(ctx context.Context, tx *sqlx.Tx, apartmentID string) (apartmentModel.Apartment, error) {
	apartment, err := s.apartmentRepo.GetForUpdateTx(ctx, tx,
		shared.FilterByID(apartmentID, apartmentModel.FieldID, apartmentModel.TableName))
	if err != nil {
		return apartment, fmt.Errorf("failed to lock apartment: %w", err)
	}

	if apartment.ID == constant.Empty {
		return apartment, failure.NotFound("apartment not found") // nolint:wrapcheck
	}

	return apartment, nil
}

func (s *serviceImpl) statusFields(status, username string) map[string]any {
	return shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: status}, username)
}

func (s *serviceImpl) siblingFilter(apartmentID, excludeBookingID, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldApartmentID,
				Operator: gDto.FilterOperatorEq,
				Value:    apartmentID,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldID,
				Operator: gDto.FilterOperatorNotEq,
				Value:    excludeBookingID,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    status,
				Table:    bookingModel.TableName,
				ArgName:  "sibling_status",
			},
		},
	}
}

func (s *serviceImpl) activeBookingsFilter(apartmentID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldApartmentID,
				Operator: gDto.FilterOperatorEq,
				Value:    apartmentID,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    bookingModel.StatusActive,
				Table:    bookingModel.TableName,
			},
		},
	}
}

// publish sends the lifecycle event after commit. A broker hiccup must not
// undo a committed sale, so failures only log.
func (s *serviceImpl) publish(ctx context.Context, key string, order orderModel.Order) {
	go func() {
		c := context.WithoutCancel(ctx)

		event := dto.OrderEventFromModel(order, timezone.Now())
		msg := kafka.Message{Key: key, Value: event}

		if err := s.events.SendMessages(c, s.cfg.Event.Kafka.Topics.Lifecycle, msg); err != nil {
			log.Warn().Err(err).Str("event", key).Msg("failed to publish lifecycle event")
		}
	}()
}

func (s *serviceImpl) invalidate(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, "apartment")
		shared.InvalidateCaches(c, s.cache, "booking")
		shared.InvalidateCaches(c, s.cache, "order")
	}()
}
