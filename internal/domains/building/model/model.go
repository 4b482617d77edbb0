package model

import (
	"estate/shared/model"
)

const (
	TableName  = "buildings"
	EntityName = "building"

	FieldID                 = "id"
	FieldProjectName        = "project_name"
	FieldAddress            = "address"
	FieldFloors             = "floors"
	FieldApartmentsPerFloor = "apartments_per_floor"
	FieldImage              = "image"
)

type Building struct {
	ID                 string `db:"id"`
	ProjectName        string `db:"project_name"`
	Address            string `db:"address"`
	Floors             int    `db:"floors"`
	ApartmentsPerFloor int    `db:"apartments_per_floor"`
	Image              string `db:"image"`
	model.Metadata
}
