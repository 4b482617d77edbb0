package model

import (
	"estate/shared/model"
)

const (
	TableName  = "agencies"
	EntityName = "agency"

	FieldID      = "id"
	FieldUserID  = "user_id"
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldAddress = "address"
	FieldImage   = "image"
)

type Agency struct {
	ID      string `db:"id"`
	UserID  string `db:"user_id"`
	Name    string `db:"name"`
	Phone   string `db:"phone"`
	Address string `db:"address"`
	Image   string `db:"image"`
	model.Metadata
}
