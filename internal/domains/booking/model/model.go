package model

import (
	"estate/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldApartmentID = "apartment_id"
	FieldCustomerID  = "customer_id"
	FieldAgencyID    = "agency_id"
	FieldMoney       = "money"
	FieldStatus      = "status"
)

// Booking statuses. Active is the only non-terminal one.
const (
	StatusActive       = "Active"
	StatusComplete     = "Complete"
	StatusClosed       = "Closed"
	StatusBookingFails = "BookingFails"
)

type Booking struct {
	ID          string  `db:"id"`
	ApartmentID string  `db:"apartment_id"`
	CustomerID  string  `db:"customer_id"`
	AgencyID    string  `db:"agency_id"`
	Money       float64 `db:"money"`
	Status      string  `db:"status"`
	model.Metadata
}
