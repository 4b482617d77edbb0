package model

import (
	"estate/shared/model"
	"time"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldStatus    = "status"
	FieldLastLogin = "last_login"
)

type User struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	Status    string     `db:"status"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}
