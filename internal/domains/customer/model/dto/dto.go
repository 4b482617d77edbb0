package dto

import (
	"estate/internal/domains/customer/model"
	"estate/shared"
	gDto "estate/shared/dto"
)

type UpdateCustomerRequest struct {
	FullName string `db:"full_name" json:"full_name" validate:"omitempty,max=100"`
	Phone    string `db:"phone"     json:"phone"     validate:"omitempty,max=20"`
	Address  string `db:"address"   json:"address"   validate:"omitempty,max=255"`
}

type CustomerResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Image    string `json:"image"`
	gDto.Metadata
}

func (r *CustomerResponse) FromModel(model model.Customer) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.FullName = model.FullName
	r.Phone = model.Phone
	r.Address = model.Address
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetCustomersResponse) FromModels(models []model.Customer, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Customers = make([]CustomerResponse, len(models))
	for i, mod := range models {
		r.Customers[i].FromModel(mod)
	}
}
