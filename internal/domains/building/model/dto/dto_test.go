package dto_test

import (
	"testing"

	"estate/internal/domains/building/model"
	"estate/internal/domains/building/model/dto"
	"estate/shared/constant"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestCreateBuildingRequest_ToModel(t *testing.T) {
	req := dto.CreateBuildingRequest{
		ProjectName:        "Sunrise Towers",
		Address:            "1 Harbour Street",
		Floors:             10,
		ApartmentsPerFloor: 4,
	}

	username := "test-admin"
	building := req.ToModel(username, "https://cdn.example.com/buildings/sunrise.jpg")

	assert.NotEmpty(t, building.ID, "expected ID to be generated")
	assert.Equal(t, req.ProjectName, building.ProjectName)
	assert.Equal(t, req.Address, building.Address)
	assert.Equal(t, req.Floors, building.Floors)
	assert.Equal(t, req.ApartmentsPerFloor, building.ApartmentsPerFloor)
	assert.Equal(t, "https://cdn.example.com/buildings/sunrise.jpg", building.Image)
	assert.Equal(t, username, building.CreatedBy)
	assert.Equal(t, username, building.ModifiedBy)
	assert.False(t, building.CreatedAt.IsZero(), "expected CreatedAt to be set")
	assert.False(t, building.ModifiedAt.IsZero(), "expected ModifiedAt to be set")
}

func TestCreateBuildingRequest_ToApartmentModels(t *testing.T) {
	req := dto.CreateBuildingRequest{
		ProjectName:        "Sunrise Towers",
		Address:            "1 Harbour Street",
		Floors:             3,
		ApartmentsPerFloor: 12,
	}

	apartments := req.ToApartmentModels("test-admin", "building-id-1")

	assert.Len(t, apartments, 36)

	numbers := make(map[string]bool, len(apartments))
	for _, apartment := range apartments {
		assert.NotEmpty(t, apartment.ID)
		assert.Equal(t, "building-id-1", apartment.BuildingID)
		assert.Empty(t, apartment.Status, "expected a fresh apartment to carry no status")
		assert.Nil(t, apartment.AgencyID)
		assert.Equal(t, constant.ImagePlaceholder, apartment.Image)
		assert.Equal(t, "test-admin", apartment.CreatedBy)

		assert.False(t, numbers[apartment.Number], "expected unique number, got duplicate %s", apartment.Number)
		numbers[apartment.Number] = true
	}

	// Numbers read floor then unit, the unit zero padded to two digits.
	assert.Equal(t, "101", apartments[0].Number)
	assert.Equal(t, 1, apartments[0].Floor)
	assert.Equal(t, "112", apartments[11].Number)
	assert.Equal(t, "201", apartments[12].Number)
	assert.Equal(t, 2, apartments[12].Floor)
	assert.Equal(t, "307", apartments[30].Number)
	assert.Equal(t, 3, apartments[30].Floor)
	assert.Equal(t, "312", apartments[35].Number)
}

func TestBuildingResponse_FromModel(t *testing.T) {
	now := timezone.Now()
	buildingModel := model.Building{
		ID:                 "building-id-1",
		ProjectName:        "Sunrise Towers",
		Address:            "1 Harbour Street",
		Floors:             10,
		ApartmentsPerFloor: 4,
		Image:              "https://cdn.example.com/buildings/sunrise.jpg",
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  "test-admin",
			ModifiedBy: "test-admin",
		},
	}

	var response dto.BuildingResponse
	response.FromModel(buildingModel)

	assert.Equal(t, buildingModel.ID, response.ID)
	assert.Equal(t, buildingModel.ProjectName, response.ProjectName)
	assert.Equal(t, buildingModel.Address, response.Address)
	assert.Equal(t, buildingModel.Floors, response.Floors)
	assert.Equal(t, buildingModel.ApartmentsPerFloor, response.ApartmentsPerFloor)
	assert.Equal(t, buildingModel.Image, response.Image)
	assert.Equal(t, buildingModel.CreatedBy, response.CreatedBy)
	assert.Equal(t, buildingModel.ModifiedBy, response.ModifiedBy)
}

func TestGetBuildingsResponse_FromModels(t *testing.T) {
	buildings := []model.Building{
		{ID: "building-id-1", ProjectName: "Sunrise Towers"},
		{ID: "building-id-2", ProjectName: "Harbour View"},
	}

	var response dto.GetBuildingsResponse
	response.FromModels(buildings, 25, 10)

	assert.Len(t, response.Buildings, 2)
	assert.Equal(t, 25, response.TotalData)
	assert.Equal(t, 3, response.TotalPage)
	assert.Equal(t, "building-id-1", response.Buildings[0].ID)
	assert.Equal(t, "Harbour View", response.Buildings[1].ProjectName)
}
