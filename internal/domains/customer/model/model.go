package model

import (
	"estate/shared/model"
)

const (
	TableName  = "customers"
	EntityName = "customer"

	FieldID       = "id"
	FieldUserID   = "user_id"
	FieldFullName = "full_name"
	FieldPhone    = "phone"
	FieldAddress  = "address"
	FieldImage    = "image"
)

type Customer struct {
	ID       string `db:"id"`
	UserID   string `db:"user_id"`
	FullName string `db:"full_name"`
	Phone    string `db:"phone"`
	Address  string `db:"address"`
	Image    string `db:"image"`
	model.Metadata
}
