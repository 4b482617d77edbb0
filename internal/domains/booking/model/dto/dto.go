package dto

import (
	"estate/internal/domains/booking/model"
	"estate/shared"
	gDto "estate/shared/dto"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ApartmentID string  `json:"apartment_id" validate:"required,uuid"`
	Money       float64 `json:"money"        validate:"required,gt=0"`
}

func (r *CreateBookingRequest) ToModel(username, customerID, agencyID string) model.Booking {
	return model.Booking{
		ID:          uuid.NewString(),
		ApartmentID: r.ApartmentID,
		CustomerID:  customerID,
		AgencyID:    agencyID,
		Money:       r.Money,
		Status:      model.StatusActive,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}
}

type BookingResponse struct {
	ID          string  `json:"id"`
	ApartmentID string  `json:"apartment_id"`
	CustomerID  string  `json:"customer_id"`
	AgencyID    string  `json:"agency_id"`
	Money       float64 `json:"money"`
	Status      string  `json:"status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.ApartmentID = model.ApartmentID
	r.CustomerID = model.CustomerID
	r.AgencyID = model.AgencyID
	r.Money = model.Money
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
