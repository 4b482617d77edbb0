package model

import (
	"estate/shared/model"
)

const (
	TableName  = "orders"
	EntityName = "order"

	FieldID          = "id"
	FieldBookingID   = "booking_id"
	FieldApartmentID = "apartment_id"
	FieldCustomerID  = "customer_id"
	FieldAgencyID    = "agency_id"
	FieldTotal       = "total"
	FieldStatus      = "status"
	FieldPrevStatus  = "prev_status"
	FieldImage       = "image"
)

// Order statuses.
const (
	StatusUnpaid  = "Unpaid"
	StatusWaiting = "Waiting"
	StatusPaid    = "Paid"
)

// ValidStatus reports whether status is one of the known order statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusUnpaid, StatusWaiting, StatusPaid:
		return true
	}

	return false
}

// Order records a sale in progress. PrevStatus keeps the apartment status
// from just before the sale so a reversal can restore it exactly.
type Order struct {
	ID          string  `db:"id"`
	BookingID   string  `db:"booking_id"`
	ApartmentID string  `db:"apartment_id"`
	CustomerID  string  `db:"customer_id"`
	AgencyID    string  `db:"agency_id"`
	Total       float64 `db:"total"`
	Status      string  `db:"status"`
	PrevStatus  string  `db:"prev_status"`
	Image       string  `db:"image"`
	model.Metadata
}
