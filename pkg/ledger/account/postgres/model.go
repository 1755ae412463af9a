package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
	pgutil "github.com/code-payments/crowdfund/pkg/database/postgres"
)

const (
	tableName = "crowdfund__core_ledgeraccount"

	allFields = `id, address, owner, lamports, data, executable, version, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address    string `db:"address"`
	Owner      string `db:"owner"`
	Lamports   uint64 `db:"lamports"`
	Data       []byte `db:"data"`
	Executable bool   `db:"executable"`

	Version       uint64    `db:"version"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *account.Record) *model {
	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      obj.Lamports,
		Data:          data,
		Executable:    obj.Executable,
		Version:       obj.Version,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func fromModel(obj *model) *account.Record {
	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &account.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      obj.Lamports,
		Data:          data,
		Executable:    obj.Executable,
		Version:       obj.Version,
		LastUpdatedAt: obj.LastUpdatedAt.UTC(),
	}
}

// dbSave inserts the model when its version is 0, and otherwise updates the
// row only if the stored version still matches. On success, the model holds
// the persisted row.
func (m *model) dbSave(ctx context.Context, tx *sqlx.Tx) error {
	m.LastUpdatedAt = time.Now()

	if m.Version == 0 {
		query := `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, executable, version, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6)

			RETURNING ` + allFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.Executable,
			m.LastUpdatedAt.UTC(),
		).StructScan(m)
		return pgutil.CheckUniqueViolation(err, account.ErrStaleVersion)
	}

	query := `UPDATE ` + tableName + `
		SET owner = $2, lamports = $3, data = $4, executable = $5, version = version + 1, last_updated_at = $6
		WHERE address = $1 AND version = $7

		RETURNING ` + allFields

	err := tx.QueryRowxContext(
		ctx,
		query,
		m.Address,
		m.Owner,
		m.Lamports,
		m.Data,
		m.Executable,
		m.LastUpdatedAt.UTC(),
		m.Version,
	).StructScan(m)
	return pgutil.CheckNoRows(err, account.ErrStaleVersion)
}

func dbSaveAll(ctx context.Context, db *sqlx.DB, models []*model) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		for _, m := range models {
			if err := m.dbSave(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT ` + allFields + ` FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*model, error) {
	var res []*model

	// Byte-wise ordering matches the ordering of Go strings
	query := `SELECT ` + allFields + ` FROM ` + tableName + `
		WHERE owner = $1
		ORDER BY address COLLATE "C" ASC`

	err := db.SelectContext(ctx, &res, query, owner)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}
	return res, nil
}
