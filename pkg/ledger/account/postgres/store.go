package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres account.Store
func New(db *sql.DB) account.Store {
	return NewFromSqlx(sqlx.NewDb(db, "pgx"))
}

// NewFromSqlx returns a new postgres account.Store over an existing sqlx
// handle, such as one opened with pg.Open
func NewFromSqlx(db *sqlx.DB) account.Store {
	return &store{
		db: db,
	}
}

// Get implements account.Store.Get
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	model, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*account.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}

// SaveAll implements account.Store.SaveAll
func (s *store) SaveAll(ctx context.Context, records ...*account.Record) error {
	if err := account.ValidateBatch(records); err != nil {
		return err
	}

	models := make([]*model, len(records))
	for i, record := range records {
		models[i] = toModel(record)
	}

	if err := dbSaveAll(ctx, s.db, models); err != nil {
		return err
	}

	for i, model := range models {
		fromModel(model).CopyTo(records[i])
	}
	return nil
}
