package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"estate/config"
	"estate/infras/otel/mocks"
	apartmentMocks "estate/internal/domains/apartment/mocks"
	apartmentModel "estate/internal/domains/apartment/model"
	bookingMocks "estate/internal/domains/booking/mocks"
	bookingModel "estate/internal/domains/booking/model"
	orderMocks "estate/internal/domains/order/mocks"
	"estate/internal/domains/order/model"
	"estate/internal/domains/order/model/dto"
	"estate/internal/domains/order/service"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	"estate/shared/failure"
	"estate/shared/imaging"
)

type fixture struct {
	svc           service.Order
	orderRepo     *orderMocks.MockOrder
	bookingRepo   *bookingMocks.MockBooking
	apartmentRepo *apartmentMocks.MockApartment
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	return newFixtureWithImaging(t, stubImaging{})
}

func newFixtureWithImaging(t *testing.T, img imaging.Helper) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		orderRepo:     orderMocks.NewMockOrder(ctrl),
		bookingRepo:   bookingMocks.NewMockBooking(ctrl),
		apartmentRepo: apartmentMocks.NewMockApartment(ctrl),
	}

	f.svc = service.New(
		f.orderRepo,
		f.bookingRepo,
		f.apartmentRepo,
		img,
		&config.Config{},
		missCache{},
		mocks.NewOtel(),
	)

	return f
}

func unpaidOrder() model.Order {
	return model.Order{
		ID:          "order-id-1",
		BookingID:   "booking-id-1",
		ApartmentID: "apartment-id-1",
		CustomerID:  "customer-id-1",
		AgencyID:    "agency-id-1",
		Total:       250000,
		Status:      model.StatusUnpaid,
		PrevStatus:  apartmentModel.StatusUpdated,
		Image:       constant.ImagePlaceholder,
	}
}

func TestOrderService_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		res, err := f.svc.Get(context.Background(), "order-id-1")

		assert.NoError(t, err)
		assert.Equal(t, "order-id-1", res.ID)
		assert.Equal(t, "booking-id-1", res.BookingID)
		assert.Equal(t, model.StatusUnpaid, res.Status)
		assert.Equal(t, float64(250000), res.Total)
	})

	t.Run("order not found", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Order{}, nil)

		_, err := f.svc.Get(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestOrderService_GetByCustomer(t *testing.T) {
	f := newFixture(t)

	f.orderRepo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(12, nil)

	f.orderRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Order{unpaidOrder()}, nil)

	res, err := f.svc.GetByCustomer(context.Background(), "customer-id-1", gDto.QueryParams{Page: 1, Limit: 5})

	assert.NoError(t, err)
	assert.Len(t, res.Orders, 1)
	assert.Equal(t, 12, res.TotalData)
	assert.Equal(t, 3, res.TotalPage)
}

func TestOrderService_GetBilling(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.bookingRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(bookingModel.Booking{
				ID:     "booking-id-1",
				Money:  50000,
				Status: bookingModel.StatusComplete,
			}, nil)

		res, err := f.svc.GetBilling(context.Background(), "order-id-1")

		assert.NoError(t, err)
		assert.Equal(t, float64(50000), res.BookingMoney)
		assert.Equal(t, bookingModel.StatusComplete, res.BookingStatus)
		assert.Equal(t, float64(200000), res.Outstanding)
	})

	t.Run("booking missing", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.bookingRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(bookingModel.Booking{}, nil)

		_, err := f.svc.GetBilling(context.Background(), "order-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestOrderService_GetRemaining(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.apartmentRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(apartmentModel.Apartment{
				ID:    "apartment-id-1",
				Price: 300000,
			}, nil)

		res, err := f.svc.GetRemaining(context.Background(), "order-id-1")

		assert.NoError(t, err)
		assert.Equal(t, "order-id-1", res.OrderID)
		assert.Equal(t, float64(300000), res.ApartmentPrice)
		assert.Equal(t, float64(250000), res.OrderTotal)
		assert.Equal(t, float64(50000), res.Remaining)
	})

	t.Run("apartment missing", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.apartmentRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(apartmentModel.Apartment{}, nil)

		_, err := f.svc.GetRemaining(context.Background(), "order-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestOrderService_ChangeStatus(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-actor")

	t.Run("unknown status rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.ChangeStatus(ctx, dto.UpdateOrderStatusRequest{Status: "Cancelled"}, "order-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("moving to waiting finalizes total at listing price", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.apartmentRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(apartmentModel.Apartment{
				ID:    "apartment-id-1",
				Price: 275000,
			}, nil)

		f.orderRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusWaiting, fields[model.FieldStatus])
				assert.Equal(t, float64(275000), fields[model.FieldTotal])
				assert.Equal(t, "admin-actor", fields[constant.FieldModifiedBy])

				return nil
			})

		err := f.svc.ChangeStatus(ctx, dto.UpdateOrderStatusRequest{Status: model.StatusWaiting}, "order-id-1")

		assert.NoError(t, err)
	})

	t.Run("moving to paid leaves total untouched", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.orderRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusPaid, fields[model.FieldStatus])
				assert.NotContains(t, fields, model.FieldTotal)

				return nil
			})

		err := f.svc.ChangeStatus(ctx, dto.UpdateOrderStatusRequest{Status: model.StatusPaid}, "order-id-1")

		assert.NoError(t, err)
	})

	t.Run("order missing", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Order{}, nil)

		err := f.svc.ChangeStatus(ctx, dto.UpdateOrderStatusRequest{Status: model.StatusPaid}, "missing-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("update error", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.orderRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		err := f.svc.ChangeStatus(ctx, dto.UpdateOrderStatusRequest{Status: model.StatusPaid}, "order-id-1")

		assert.Error(t, err)
	})
}

func TestOrderService_UpdateImage(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-actor")

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(unpaidOrder(), nil)

		f.orderRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "https://cdn.example.com/orders/receipt.jpg", fields[model.FieldImage])

				return nil
			})

		url, err := f.svc.UpdateImage(ctx, "order-id-1", nil, &multipart.FileHeader{Filename: "receipt.jpg"})

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/orders/receipt.jpg", url)
	})

	t.Run("order missing", func(t *testing.T) {
		f := newFixture(t)

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Order{}, nil)

		_, err := f.svc.UpdateImage(ctx, "missing-id", nil, &multipart.FileHeader{Filename: "receipt.jpg"})

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("previous blob released only after the row is updated", func(t *testing.T) {
		released := []string{}
		f := newFixtureWithImaging(t, stubImaging{released: &released})

		order := unpaidOrder()
		order.Image = "https://cdn.example.com/orders/old.jpg"

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(order, nil)

		f.orderRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ map[string]any, _ gDto.FilterGroup) error {
				assert.Empty(t, released)

				return nil
			})

		_, err := f.svc.UpdateImage(ctx, "order-id-1", nil, &multipart.FileHeader{Filename: "receipt.jpg"})

		assert.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.example.com/orders/old.jpg"}, released)
	})

	t.Run("update failure keeps the previous blob", func(t *testing.T) {
		released := []string{}
		f := newFixtureWithImaging(t, stubImaging{released: &released})

		order := unpaidOrder()
		order.Image = "https://cdn.example.com/orders/old.jpg"

		f.orderRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(order, nil)

		f.orderRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		_, err := f.svc.UpdateImage(ctx, "order-id-1", nil, &multipart.FileHeader{Filename: "receipt.jpg"})

		assert.Error(t, err)
		assert.Empty(t, released)
	})
}

// stubImaging stands in for the blob helper so the tests never touch S3.
// When released is set it records every Release call.
type stubImaging struct {
	released *[]string
}

func (stubImaging) Upload(_ context.Context, _ string, _ multipart.File, _ *multipart.FileHeader) (string, error) {
	return "https://cdn.example.com/orders/receipt.jpg", nil
}

func (s stubImaging) Release(_ context.Context, _ imaging.RefCounter, currentURL string) {
	if s.released != nil {
		*s.released = append(*s.released, currentURL)
	}
}

func (stubImaging) Placeholder() string { return constant.ImagePlaceholder }

// missCache always misses on reads and accepts writes, so every test goes
// through the repository path.
type missCache struct{}

func (missCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }

func (missCache) Get(_ context.Context, _ string, _ any) error {
	return errors.New("cache miss")
}

func (missCache) Delete(_ context.Context, _ string) error { return nil }

func (missCache) Clear(_ context.Context, _ string) error { return nil }
