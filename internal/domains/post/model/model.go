package model

import (
	"time"

	"estate/shared/model"
)

const (
	TableName  = "posts"
	EntityName = "post"

	FieldID             = "id"
	FieldBuildingID     = "building_id"
	FieldAgencyID       = "agency_id"
	FieldDescription    = "description"
	FieldPriorityMethod = "priority_method"
	FieldSalesOpenAt    = "sales_open_at"
	FieldSalesCloseAt   = "sales_close_at"
	FieldImage          = "image"
)

// Post is a sales announcement an agency publishes for a building. The sales
// window is the period customers can place bookings advertised by the post.
type Post struct {
	ID             string    `db:"id"`
	BuildingID     string    `db:"building_id"`
	AgencyID       string    `db:"agency_id"`
	Description    string    `db:"description"`
	PriorityMethod int       `db:"priority_method"`
	SalesOpenAt    time.Time `db:"sales_open_at"`
	SalesCloseAt   time.Time `db:"sales_close_at"`
	Image          string    `db:"image"`
	model.Metadata
}
