package dto

import (
	"fmt"

	apartmentModel "estate/internal/domains/apartment/model"
	"estate/internal/domains/building/model"
	"estate/shared"
	"estate/shared/constant"
	gDto "estate/shared/dto"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	"github.com/google/uuid"
)

type CreateBuildingRequest struct {
	ProjectName        string `json:"project_name"         validate:"required,max=150"`
	Address            string `json:"address"              validate:"required,max=255"`
	Floors             int    `json:"floors"               validate:"required,min=1,max=200"`
	ApartmentsPerFloor int    `json:"apartments_per_floor" validate:"required,min=1,max=99"`
}

func (r *CreateBuildingRequest) ToModel(username, imageURL string) model.Building {
	return model.Building{
		ID:                 uuid.NewString(),
		ProjectName:        r.ProjectName,
		Address:            r.Address,
		Floors:             r.Floors,
		ApartmentsPerFloor: r.ApartmentsPerFloor,
		Image:              imageURL,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}
}

// ToApartmentModels lays out every unit of the building. Unit numbers follow
// the floor-then-unit convention, unit zero padded to two digits, so floor 3
// unit 7 reads "307".
func (r *CreateBuildingRequest) ToApartmentModels(username, buildingID string) []apartmentModel.Apartment {
	apartments := make([]apartmentModel.Apartment, 0, r.Floors*r.ApartmentsPerFloor)

	for floor := 1; floor <= r.Floors; floor++ {
		for unit := 1; unit <= r.ApartmentsPerFloor; unit++ {
			apartments = append(apartments, apartmentModel.Apartment{
				ID:         uuid.NewString(),
				BuildingID: buildingID,
				Number:     fmt.Sprintf("%d%02d", floor, unit),
				Floor:      floor,
				Image:      constant.ImagePlaceholder,
				Metadata: gModel.Metadata{
					CreatedAt:  timezone.Now(),
					ModifiedAt: timezone.Now(),
					CreatedBy:  username,
					ModifiedBy: username,
				},
			})
		}
	}

	return apartments
}

type UpdateBuildingRequest struct {
	ProjectName string `db:"project_name" json:"project_name" validate:"omitempty,max=150"`
	Address     string `db:"address"      json:"address"      validate:"omitempty,max=255"`
}

type BuildingResponse struct {
	ID                 string `json:"id"`
	ProjectName        string `json:"project_name"`
	Address            string `json:"address"`
	Floors             int    `json:"floors"`
	ApartmentsPerFloor int    `json:"apartments_per_floor"`
	Image              string `json:"image"`
	gDto.Metadata
}

func (r *BuildingResponse) FromModel(model model.Building) {
	r.ID = model.ID
	r.ProjectName = model.ProjectName
	r.Address = model.Address
	r.Floors = model.Floors
	r.ApartmentsPerFloor = model.ApartmentsPerFloor
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetBuildingsResponse struct {
	Buildings []BuildingResponse `json:"buildings"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetBuildingsResponse) FromModels(models []model.Building, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Buildings = make([]BuildingResponse, len(models))
	for i, mod := range models {
		r.Buildings[i].FromModel(mod)
	}
}

type BuildingDetailsResponse struct {
	BuildingResponse
	TotalApartments int            `json:"total_apartments"`
	StatusCounts    map[string]int `json:"status_counts"`
}
