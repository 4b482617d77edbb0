package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"estate/config"
	"estate/infras/otel/mocks"
	bookingMocks "estate/internal/domains/booking/mocks"
	"estate/internal/domains/booking/model"
	"estate/internal/domains/booking/service"
	gDto "estate/shared/dto"
	"estate/shared/failure"
)

func newService(t *testing.T) (service.Booking, *bookingMocks.MockBooking) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := bookingMocks.NewMockBooking(ctrl)

	svc := service.New(repo, &config.Config{}, missCache{}, mocks.NewOtel())

	return svc, repo
}

func activeBooking() model.Booking {
	return model.Booking{
		ID:          "booking-id-1",
		ApartmentID: "apartment-id-1",
		CustomerID:  "customer-id-1",
		AgencyID:    "agency-id-1",
		Money:       50000,
		Status:      model.StatusActive,
	}
}

func TestBookingService_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeBooking(), nil)

		res, err := svc.Get(context.Background(), "booking-id-1")

		assert.NoError(t, err)
		assert.Equal(t, "booking-id-1", res.ID)
		assert.Equal(t, model.StatusActive, res.Status)
		assert.Equal(t, float64(50000), res.Money)
	})

	t.Run("booking not found", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{}, nil)

		_, err := svc.Get(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestBookingService_GetByCustomer(t *testing.T) {
	svc, repo := newService(t)

	repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(7, nil)

	repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{activeBooking()}, nil)

	res, err := svc.GetByCustomer(context.Background(), "customer-id-1", gDto.QueryParams{Page: 1, Limit: 5})

	assert.NoError(t, err)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, 7, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("active booking deleted", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeBooking(), nil)

		repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		err := svc.Delete(context.Background(), "booking-id-1")

		assert.NoError(t, err)
	})

	t.Run("completed booking must go through its order", func(t *testing.T) {
		svc, repo := newService(t)

		booking := activeBooking()
		booking.Status = model.StatusComplete

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(booking, nil)

		err := svc.Delete(context.Background(), "booking-id-1")

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("booking not found", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{}, nil)

		err := svc.Delete(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("delete error", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeBooking(), nil)

		repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		err := svc.Delete(context.Background(), "booking-id-1")

		assert.Error(t, err)
	})
}

// missCache always misses on reads and accepts writes, so every test goes
// through the repository path.
type missCache struct{}

func (missCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }

func (missCache) Get(_ context.Context, _ string, _ any) error {
	return errors.New("cache miss")
}

func (missCache) Delete(_ context.Context, _ string) error { return nil }

func (missCache) Clear(_ context.Context, _ string) error { return nil }
