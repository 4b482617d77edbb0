package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"estate/infras/otel"
	"estate/infras/postgres"
	"estate/internal/domains/customer/model"
	gDto "estate/shared/dto"
	gRepo "estate/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Customer interface {
	Insert(ctx context.Context, model model.Customer) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Customer) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Customer, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Customer, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	CountByImage(ctx context.Context, imageURL string) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Customer]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Customer {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Customer](model.EntityName, model.TableName, model.FieldID, db, otel),
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
