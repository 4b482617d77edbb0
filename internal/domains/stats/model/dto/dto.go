package dto

type ApartmentStatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count"  json:"count"`
}

type BuildingApartmentStats struct {
	BuildingID      string                 `json:"building_id"`
	TotalApartments int                    `json:"total_apartments"`
	ByStatus        []ApartmentStatusCount `json:"by_status"`
}

type AgencySalesStats struct {
	AgencyID      string  `db:"agency_id"      json:"agency_id"`
	SoldCount     int     `db:"sold_count"     json:"sold_count"`
	TotalRevenue  float64 `db:"total_revenue"  json:"total_revenue"`
	WaitingOrders int     `db:"waiting_orders" json:"waiting_orders"`
}
