package account

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound = errors.New("ledger account not found")

	ErrStaleVersion = errors.New("ledger account version is stale")
)

type Store interface {
	// Get gets the latest record for an account address. ErrAccountNotFound is
	// returned if no record exists.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets all account records owned by a program, ordered by
	// address. ErrAccountNotFound is returned if no record exists.
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)

	// SaveAll atomically saves a set of account records. Each record's Version
	// must match the stored version, where 0 denotes a record that doesn't exist
	// yet, otherwise ErrStaleVersion is returned and nothing is saved. On success,
	// each record is updated with its new version and DB-assigned fields.
	SaveAll(ctx context.Context, records ...*Record) error
}
