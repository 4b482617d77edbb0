package service_test

import (
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"estate/config"
	"estate/infras/kafka"
	"estate/infras/otel/mocks"
	postgresMocks "estate/infras/postgres/mocks"
	agencyMocks "estate/internal/domains/agency/mocks"
	apartmentMocks "estate/internal/domains/apartment/mocks"
	apartmentModel "estate/internal/domains/apartment/model"
	bookingMocks "estate/internal/domains/booking/mocks"
	bookingModel "estate/internal/domains/booking/model"
	bookingDto "estate/internal/domains/booking/model/dto"
	"estate/internal/domains/lifecycle/model/dto"
	"estate/internal/domains/lifecycle/service"
	orderMocks "estate/internal/domains/order/mocks"
	orderModel "estate/internal/domains/order/model"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	kafkaGo "github.com/segmentio/kafka-go"
)

type fixture struct {
	svc           service.Lifecycle
	apartmentRepo *apartmentMocks.MockApartment
	bookingRepo   *bookingMocks.MockBooking
	orderRepo     *orderMocks.MockOrder
	agencyRepo    *agencyMocks.MockAgency
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		apartmentRepo: apartmentMocks.NewMockApartment(ctrl),
		bookingRepo:   bookingMocks.NewMockBooking(ctrl),
		orderRepo:     orderMocks.NewMockOrder(ctrl),
		agencyRepo:    agencyMocks.NewMockAgency(ctrl),
	}

	f.svc = service.New(
		f.apartmentRepo,
		f.bookingRepo,
		f.orderRepo,
		f.agencyRepo,
		postgresMocks.NewTransactor(),
		noopEvents{},
		noopImaging{},
		&config.Config{},
		noopCache{},
		mocks.NewOtel(),
	)

	return f
}

func listedApartment() apartmentModel.Apartment {
	agencyID := "agency-id-1"

	return apartmentModel.Apartment{
		ID:         "apartment-id-1",
		BuildingID: "building-id-1",
		AgencyID:   &agencyID,
		Number:     "307",
		Floor:      3,
		Status:     apartmentModel.StatusUpdated,
		Price:      250000,
		Image:      "apartments/some-image.jpg",
	}
}

func TestLifecycleService_CreateBooking(t *testing.T) {
	req := bookingDto.CreateBookingRequest{
		ApartmentID: "apartment-id-1",
		Money:       5000,
	}

	t.Run("successful booking", func(t *testing.T) {
		f := newFixture(t)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(listedApartment(), nil)

		f.bookingRepo.EXPECT().
			CountTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(0, nil).
			Times(2)

		f.bookingRepo.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.NoError(t, err)
		assert.Equal(t, bookingModel.StatusActive, res.Status)
		assert.Equal(t, "agency-id-1", res.AgencyID)
		assert.Equal(t, req.Money, res.Money)
	})

	t.Run("freshly distributed apartment can be booked", func(t *testing.T) {
		f := newFixture(t)

		distributed := listedApartment()
		distributed.Status = apartmentModel.StatusDistributed

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(distributed, nil)

		f.bookingRepo.EXPECT().
			CountTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(0, nil).
			Times(2)

		f.bookingRepo.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.NoError(t, err)
		assert.Equal(t, bookingModel.StatusActive, res.Status)
	})

	t.Run("apartment not found", func(t *testing.T) {
		f := newFixture(t)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(apartmentModel.Apartment{}, nil)

		_, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.Error(t, err)
	})

	t.Run("sold apartment is rejected", func(t *testing.T) {
		f := newFixture(t)

		sold := listedApartment()
		sold.Status = apartmentModel.StatusSold

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(sold, nil)

		_, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("undistributed apartment is rejected", func(t *testing.T) {
		f := newFixture(t)

		fresh := listedApartment()
		fresh.Status = constant.Empty
		fresh.AgencyID = nil

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(fresh, nil)

		_, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("customer cannot book the same apartment twice", func(t *testing.T) {
		f := newFixture(t)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(listedApartment(), nil)

		f.bookingRepo.EXPECT().
			CountTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(1, nil)

		_, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("second active booking is rejected", func(t *testing.T) {
		f := newFixture(t)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(listedApartment(), nil)

		first := f.bookingRepo.EXPECT().
			CountTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(0, nil)

		f.bookingRepo.EXPECT().
			CountTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(1, nil).
			After(first)

		_, err := f.svc.CreateBooking(context.Background(), req, "customer-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestLifecycleService_CompleteBooking(t *testing.T) {
	activeBooking := bookingModel.Booking{
		ID:          "booking-id-1",
		ApartmentID: "apartment-id-1",
		CustomerID:  "customer-id-1",
		AgencyID:    "agency-id-1",
		Money:       5000,
		Status:      bookingModel.StatusActive,
	}

	t.Run("successful completion", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(activeBooking, nil)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(listedApartment(), nil)

		// First update completes the booking, second parks the siblings.
		f.bookingRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			Times(2)

		var captured orderModel.Order

		f.orderRepo.EXPECT().
			InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, order orderModel.Order) error {
				captured = order

				return nil
			})

		f.apartmentRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, apartmentModel.StatusSold, fields[apartmentModel.FieldStatus])

				return nil
			})

		res, err := f.svc.CompleteBooking(context.Background(), "booking-id-1")

		assert.NoError(t, err)
		assert.Equal(t, activeBooking.Money, res.Total)
		assert.Equal(t, orderModel.StatusUnpaid, res.Status)
		assert.Equal(t, apartmentModel.StatusUpdated, captured.PrevStatus)
		assert.Equal(t, activeBooking.ID, captured.BookingID)
	})

	t.Run("booking not found", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(bookingModel.Booking{}, nil)

		_, err := f.svc.CompleteBooking(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("closed booking cannot be completed", func(t *testing.T) {
		f := newFixture(t)

		closed := activeBooking
		closed.Status = bookingModel.StatusClosed

		f.bookingRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(closed, nil)

		_, err := f.svc.CompleteBooking(context.Background(), "booking-id-1")

		assert.Error(t, err)
	})
}

func TestLifecycleService_ReverseOrder(t *testing.T) {
	completeBooking := bookingModel.Booking{
		ID:          "booking-id-1",
		ApartmentID: "apartment-id-1",
		CustomerID:  "customer-id-1",
		AgencyID:    "agency-id-1",
		Money:       5000,
		Status:      bookingModel.StatusComplete,
	}

	order := orderModel.Order{
		ID:          "order-id-1",
		BookingID:   "booking-id-1",
		ApartmentID: "apartment-id-1",
		CustomerID:  "customer-id-1",
		AgencyID:    "agency-id-1",
		Total:       5000,
		Status:      orderModel.StatusUnpaid,
		PrevStatus:  apartmentModel.StatusUpdated,
		Metadata: gModel.Metadata{
			CreatedAt: timezone.Now(),
		},
	}

	t.Run("successful reversal restores the previous status", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(completeBooking, nil)

		f.orderRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(order, nil)

		sold := listedApartment()
		sold.Status = apartmentModel.StatusSold

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(sold, nil)

		f.orderRepo.EXPECT().
			DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		// First update fails the booking, second reactivates parked siblings.
		f.bookingRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			Times(2)

		f.apartmentRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, order.PrevStatus, fields[apartmentModel.FieldStatus])

				return nil
			})

		err := f.svc.ReverseOrder(context.Background(), "booking-id-1")

		assert.NoError(t, err)
	})

	t.Run("active booking cannot be reversed", func(t *testing.T) {
		f := newFixture(t)

		active := completeBooking
		active.Status = bookingModel.StatusActive

		f.bookingRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(active, nil)

		err := f.svc.ReverseOrder(context.Background(), "booking-id-1")

		assert.Error(t, err)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(completeBooking, nil)

		f.orderRepo.EXPECT().
			GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(orderModel.Order{}, nil)

		err := f.svc.ReverseOrder(context.Background(), "booking-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestLifecycleService_ChangeApartmentStatus(t *testing.T) {
	t.Run("unknown status is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.ChangeApartmentStatus(context.Background(), dto.ChangeApartmentStatusRequest{Status: "Unknown"}, "apartment-id-1")

		assert.Error(t, err)
	})

	t.Run("moving back to distributed wipes the listing", func(t *testing.T) {
		f := newFixture(t)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(listedApartment(), nil)

		f.apartmentRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, apartmentModel.StatusDistributed, fields[apartmentModel.FieldStatus])
				assert.Equal(t, 0, fields[apartmentModel.FieldPrice])
				assert.Equal(t, 0, fields[apartmentModel.FieldBedrooms])
				assert.Equal(t, constant.Empty, fields[apartmentModel.FieldDescription])
				assert.Equal(t, constant.ImagePlaceholder, fields[apartmentModel.FieldImage])

				return nil
			})

		err := f.svc.ChangeApartmentStatus(context.Background(), dto.ChangeApartmentStatusRequest{Status: apartmentModel.StatusDistributed}, "apartment-id-1")

		assert.NoError(t, err)
	})

	t.Run("plain status move keeps the listing", func(t *testing.T) {
		f := newFixture(t)

		f.apartmentRepo.EXPECT().
			GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(listedApartment(), nil)

		f.apartmentRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, apartmentModel.StatusWaiting, fields[apartmentModel.FieldStatus])
				assert.NotContains(t, fields, apartmentModel.FieldPrice)

				return nil
			})

		err := f.svc.ChangeApartmentStatus(context.Background(), dto.ChangeApartmentStatusRequest{Status: apartmentModel.StatusWaiting}, "apartment-id-1")

		assert.NoError(t, err)
	})
}

func TestLifecycleService_DistributeFloor(t *testing.T) {
	req := dto.DistributeFloorRequest{
		AgencyID: "agency-id-1",
		Floor:    3,
		Price:    250000,
	}

	floor := []apartmentModel.Apartment{
		{ID: "apartment-id-1", Floor: 3},
		{ID: "apartment-id-2", Floor: 3},
	}

	t.Run("successful distribution", func(t *testing.T) {
		f := newFixture(t)

		f.agencyRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		f.apartmentRepo.EXPECT().
			GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(floor, nil)

		f.apartmentRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ any, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, apartmentModel.StatusDistributed, fields[apartmentModel.FieldStatus])
				assert.Equal(t, req.AgencyID, fields[apartmentModel.FieldAgencyID])
				assert.Equal(t, req.Price, fields[apartmentModel.FieldPrice])

				return nil
			})

		err := f.svc.DistributeFloor(context.Background(), req, "building-id-1")

		assert.NoError(t, err)
	})

	t.Run("unknown agency", func(t *testing.T) {
		f := newFixture(t)

		f.agencyRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		err := f.svc.DistributeFloor(context.Background(), req, "building-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("empty floor", func(t *testing.T) {
		f := newFixture(t)

		f.agencyRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		f.apartmentRepo.EXPECT().
			GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil)

		err := f.svc.DistributeFloor(context.Background(), req, "building-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("floor with a sold apartment", func(t *testing.T) {
		f := newFixture(t)

		f.agencyRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		withSold := []apartmentModel.Apartment{
			{ID: "apartment-id-1", Floor: 3},
			{ID: "apartment-id-2", Floor: 3, Status: apartmentModel.StatusSold},
		}

		f.apartmentRepo.EXPECT().
			GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(withSold, nil)

		err := f.svc.DistributeFloor(context.Background(), req, "building-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

// noopEvents swallows lifecycle events. Publishing is asynchronous and best
// effort, so the tests only need it to not block.
type noopEvents struct{}

func (noopEvents) SendMessages(_ context.Context, _ string, _ ...kafka.Message) error { return nil }

func (noopEvents) Consume(_ context.Context, _, _ string, _ func(message kafkaGo.Message)) {}

func (noopEvents) Reader(_, _ string) *kafkaGo.Reader { return nil }

type noopImaging struct{}

func (noopImaging) Upload(_ context.Context, _ string, _ multipart.File, _ *multipart.FileHeader) (string, error) {
	return constant.ImagePlaceholder, nil
}

func (noopImaging) Release(_ context.Context, _ imaging.RefCounter, _ string) {}

func (noopImaging) Placeholder() string { return constant.ImagePlaceholder }

type noopCache struct{}

func (noopCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }

func (noopCache) Get(_ context.Context, _ string, _ any) error { return nil }

func (noopCache) Delete(_ context.Context, _ string) error { return nil }

func (noopCache) Clear(_ context.Context, _ string) error { return nil }
