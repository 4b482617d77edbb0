package dto

import (
	"time"

	orderModel "estate/internal/domains/order/model"
)

type ChangeApartmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type DistributeFloorRequest struct {
	AgencyID string  `json:"agency_id" validate:"required,uuid"`
	Floor    int     `json:"floor"     validate:"required,min=1"`
	Price    float64 `json:"price"     validate:"required,gt=0"`
}

// OrderEvent is the payload published on order.created and order.reversed.
type OrderEvent struct {
	OrderID     string    `json:"order_id"`
	BookingID   string    `json:"booking_id"`
	ApartmentID string    `json:"apartment_id"`
	CustomerID  string    `json:"customer_id"`
	AgencyID    string    `json:"agency_id"`
	Total       float64   `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func OrderEventFromModel(order orderModel.Order, occurredAt time.Time) OrderEvent {
	return OrderEvent{
		OrderID:     order.ID,
		BookingID:   order.BookingID,
		ApartmentID: order.ApartmentID,
		CustomerID:  order.CustomerID,
		AgencyID:    order.AgencyID,
		Total:       order.Total,
		OccurredAt:  occurredAt,
	}
}
