package mocks

import (
	"context"

	"estate/infras/postgres"

	"github.com/jmoiron/sqlx"
)

// transactorImpl runs the closure with a nil transaction so service logic
// can be exercised without a live database. Repository mocks used inside
// the closure ignore the tx argument anyway.
type transactorImpl struct {
	err error
}

// WithTransaction implements postgres.Transactor.
func (t *transactorImpl) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	if t.err != nil {
		return t.err
	}

	return fn(nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}

func NewFailingTransactor(err error) postgres.Transactor {
	return &transactorImpl{err: err}
}
