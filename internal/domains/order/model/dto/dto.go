package dto

import (
	bookingModel "estate/internal/domains/booking/model"
	"estate/internal/domains/order/model"
	"estate/shared"
	gDto "estate/shared/dto"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Unpaid Waiting Paid"`
}

type OrderResponse struct {
	ID          string  `json:"id"`
	BookingID   string  `json:"booking_id"`
	ApartmentID string  `json:"apartment_id"`
	CustomerID  string  `json:"customer_id"`
	AgencyID    string  `json:"agency_id"`
	Total       float64 `json:"total"`
	Status      string  `json:"status"`
	Image       string  `json:"image"`
	gDto.Metadata
}

func (r *OrderResponse) FromModel(model model.Order) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.ApartmentID = model.ApartmentID
	r.CustomerID = model.CustomerID
	r.AgencyID = model.AgencyID
	r.Total = model.Total
	r.Status = model.Status
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetOrdersResponse struct {
	Orders    []OrderResponse `json:"orders"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetOrdersResponse) FromModels(models []model.Order, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Orders = make([]OrderResponse, len(models))
	for i, mod := range models {
		r.Orders[i].FromModel(mod)
	}
}

// BillingResponse joins an order with the completed booking behind it, the
// down payment counting toward the total.
type BillingResponse struct {
	OrderResponse
	BookingMoney  float64 `json:"booking_money"`
	BookingStatus string  `json:"booking_status"`
	Outstanding   float64 `json:"outstanding"`
}

func (r *BillingResponse) FromModels(order model.Order, booking bookingModel.Booking) {
	r.OrderResponse.FromModel(order)
	r.BookingMoney = booking.Money
	r.BookingStatus = booking.Status
	r.Outstanding = order.Total - booking.Money
}

type RemainingResponse struct {
	OrderID        string  `json:"order_id"`
	ApartmentPrice float64 `json:"apartment_price"`
	OrderTotal     float64 `json:"order_total"`
	Remaining      float64 `json:"remaining"`
}
