package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"estate/infras/otel"
	"estate/infras/postgres"
	"estate/internal/domains/apartment/model"
	gDto "estate/shared/dto"
	gRepo "estate/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Apartment interface {
	Insert(ctx context.Context, model model.Apartment) error
	InsertBulkTx(ctx context.Context, tx *sqlx.Tx, models []model.Apartment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Apartment, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Apartment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Apartment, error)
	GetAllTx(ctx context.Context, tx *sqlx.Tx, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Apartment, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	CountByImage(ctx context.Context, imageURL string) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Apartment]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Apartment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Apartment](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (repo *repositoryImpl) CountByImage(ctx context.Context, imageURL string) (int, error) {
	return repo.Count(ctx, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldImage,
				Operator: gDto.FilterOperatorEq,
				Value:    imageURL,
				Table:    model.TableName,
			},
		},
	})
}
