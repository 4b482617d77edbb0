package dto

import (
	"estate/internal/domains/agency/model"
	"estate/shared"
	gDto "estate/shared/dto"
)

type UpdateAgencyRequest struct {
	Name    string `db:"name"    json:"name"    validate:"omitempty,max=100"`
	Phone   string `db:"phone"   json:"phone"   validate:"omitempty,max=20"`
	Address string `db:"address" json:"address" validate:"omitempty,max=255"`
}

type AgencyResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Image   string `json:"image"`
	gDto.Metadata
}

func (r *AgencyResponse) FromModel(model model.Agency) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Name = model.Name
	r.Phone = model.Phone
	r.Address = model.Address
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetAgenciesResponse struct {
	Agencies  []AgencyResponse `json:"agencies"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetAgenciesResponse) FromModels(models []model.Agency, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Agencies = make([]AgencyResponse, len(models))
	for i, mod := range models {
		r.Agencies[i].FromModel(mod)
	}
}
