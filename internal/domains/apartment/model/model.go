package model

import (
	"estate/shared/model"
)

const (
	TableName  = "apartments"
	EntityName = "apartment"

	FieldID          = "id"
	FieldBuildingID  = "building_id"
	FieldAgencyID    = "agency_id"
	FieldNumber      = "number"
	FieldFloor       = "floor"
	FieldStatus      = "status"
	FieldArea        = "area"
	FieldPrice       = "price"
	FieldBedrooms    = "bedrooms"
	FieldBathrooms   = "bathrooms"
	FieldFurniture   = "furniture"
	FieldDescription = "description"
	FieldImage       = "image"
)

// Apartment statuses. A freshly built apartment carries no status until the
// developer hands its floor to an agency.
const (
	StatusDistributed = "Distributed"
	StatusWaiting     = "Waiting"
	StatusUpdated     = "Updated"
	StatusSold        = "Sold"
)

// ValidStatus reports whether status is one of the known apartment statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusDistributed, StatusWaiting, StatusUpdated, StatusSold:
		return true
	}

	return false
}

type Apartment struct {
	ID          string  `db:"id"`
	BuildingID  string  `db:"building_id"`
	AgencyID    *string `db:"agency_id"`
	Number      string  `db:"number"`
	Floor       int     `db:"floor"`
	Status      string  `db:"status"`
	Area        float64 `db:"area"`
	Price       float64 `db:"price"`
	Bedrooms    int     `db:"bedrooms"`
	Bathrooms   int     `db:"bathrooms"`
	Furniture   string  `db:"furniture"`
	Description string  `db:"description"`
	Image       string  `db:"image"`
	model.Metadata
}
