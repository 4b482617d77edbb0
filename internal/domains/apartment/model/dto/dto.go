package dto

import (
	"estate/internal/domains/apartment/model"
	"estate/shared"
	gDto "estate/shared/dto"
)

type UpdateListingRequest struct {
	Area        float64 `db:"area"        json:"area"        validate:"required,gt=0"`
	Price       float64 `db:"price"       json:"price"       validate:"required,gt=0"`
	Bedrooms    int     `db:"bedrooms"    json:"bedrooms"    validate:"required,min=1,max=10"`
	Bathrooms   int     `db:"bathrooms"   json:"bathrooms"   validate:"required,min=1,max=10"`
	Furniture   string  `db:"furniture"   json:"furniture"   validate:"omitempty,max=100"`
	Description string  `db:"description" json:"description" validate:"omitempty,max=2000"`
}

type ApartmentResponse struct {
	ID          string  `json:"id"`
	BuildingID  string  `json:"building_id"`
	AgencyID    *string `json:"agency_id,omitempty"`
	Number      string  `json:"number"`
	Floor       int     `json:"floor"`
	Status      string  `json:"status"`
	Area        float64 `json:"area"`
	Price       float64 `json:"price"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Furniture   string  `json:"furniture"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	gDto.Metadata
}

func (r *ApartmentResponse) FromModel(model model.Apartment) {
	r.ID = model.ID
	r.BuildingID = model.BuildingID
	r.AgencyID = model.AgencyID
	r.Number = model.Number
	r.Floor = model.Floor
	r.Status = model.Status
	r.Area = model.Area
	r.Price = model.Price
	r.Bedrooms = model.Bedrooms
	r.Bathrooms = model.Bathrooms
	r.Furniture = model.Furniture
	r.Description = model.Description
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetApartmentsResponse struct {
	Apartments []ApartmentResponse `json:"apartments"`
	TotalPage  int                 `json:"total_page"`
	TotalData  int                 `json:"total_data"`
}

func (r *GetApartmentsResponse) FromModels(models []model.Apartment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Apartments = make([]ApartmentResponse, len(models))
	for i, mod := range models {
		r.Apartments[i].FromModel(mod)
	}
}
