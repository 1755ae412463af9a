package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mr-tron/base58"
	"github.com/ory/dockertest/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
	"github.com/code-payments/crowdfund/pkg/ledger/account/tests"
	"github.com/code-payments/crowdfund/pkg/testutil"

	pgutil "github.com/code-payments/crowdfund/pkg/database/postgres"
	postgrestest "github.com/code-payments/crowdfund/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	// Used for testing ONLY, the table and migrations are external to this repository
	tableCreate = `
	CREATE TABLE crowdfund__core_ledgeraccount (
		id SERIAL NOT NULL PRIMARY KEY,

		address TEXT NOT NULL UNIQUE,
		owner TEXT NOT NULL,
		lamports BIGINT NOT NULL CHECK (lamports >= 0),
		data BYTEA NOT NULL,
		executable BOOL NOT NULL,

		version BIGINT NOT NULL CHECK (version > 0),
		last_updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE INDEX crowdfund__core_ledgeraccount__owner ON crowdfund__core_ledgeraccount (owner);
	`

	// Used for testing ONLY, the table and migrations are external to this repository
	tableDestroy = `
		DROP TABLE crowdfund__core_ledgeraccount;
	`
)

var (
	testDB    *sql.DB
	testStore account.Store
	teardown  func()
)

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	testPool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	db, cleanUpFunc, err := postgrestest.StartPostgresDB(testPool)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}

	if err := createTestTables(db); err != nil {
		log.WithError(err).Error("Error creating test tables")
		cleanUpFunc()
		os.Exit(1)
	}

	testDB = db
	testStore = New(db)
	teardown = func() {
		if pc := recover(); pc != nil {
			cleanUpFunc()
			panic(pc)
		}

		if err := resetTestTables(db); err != nil {
			log.WithError(err).Error("Error resetting test tables")
			cleanUpFunc()
			os.Exit(1)
		}
	}

	code := m.Run()
	cleanUpFunc()
	os.Exit(code)
}

func TestLedgerAccountPostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}

func TestSaveAllJoinsOuterTransaction(t *testing.T) {
	defer teardown()

	ctx := context.Background()
	db := sqlx.NewDb(testDB, "pgx")
	keys := testutil.GenerateSolanaKeys(t, 2)

	record := &account.Record{
		Address:  base58.Encode(keys[0]),
		Owner:    base58.Encode(keys[1]),
		Lamports: 1,
	}

	errAbort := errors.New("abort")
	err := pgutil.ExecuteTxWithinCtx(ctx, db, sql.LevelDefault, func(ctx context.Context) error {
		require.NoError(t, testStore.SaveAll(ctx, record))
		return errAbort
	})
	assert.Equal(t, errAbort, err)

	_, err = testStore.Get(ctx, record.Address)
	assert.Equal(t, account.ErrAccountNotFound, err)

	record.Version = 0
	err = pgutil.ExecuteTxWithinCtx(ctx, db, sql.LevelDefault, func(ctx context.Context) error {
		return testStore.SaveAll(ctx, record)
	})
	require.NoError(t, err)

	actual, err := testStore.Get(ctx, record.Address)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actual.Version)
}

func TestSaveAllDuplicateInsert(t *testing.T) {
	defer teardown()

	ctx := context.Background()
	db := sqlx.NewDb(testDB, "pgx")
	keys := testutil.GenerateSolanaKeys(t, 3)

	existing := &account.Record{
		Address:  base58.Encode(keys[0]),
		Owner:    base58.Encode(keys[2]),
		Lamports: 1,
	}
	require.NoError(t, testStore.SaveAll(ctx, existing))

	created := &account.Record{
		Address:  base58.Encode(keys[1]),
		Owner:    base58.Encode(keys[2]),
		Lamports: 2,
	}
	duplicate := &account.Record{
		Address:  existing.Address,
		Owner:    base58.Encode(keys[2]),
		Lamports: 3,
	}

	err := pgutil.ExecuteTxWithinCtx(ctx, db, sql.LevelDefault, func(ctx context.Context) error {
		return testStore.SaveAll(ctx, created, duplicate)
	})
	assert.Equal(t, account.ErrStaleVersion, err)

	_, err = testStore.Get(ctx, created.Address)
	assert.Equal(t, account.ErrAccountNotFound, err)

	actual, err := testStore.Get(ctx, existing.Address)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actual.Lamports)
	assert.EqualValues(t, 1, actual.Version)
}

func createTestTables(db *sql.DB) error {
	_, err := db.Exec(tableCreate)
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("could not create test tables")
		return err
	}
	return nil
}

func resetTestTables(db *sql.DB) error {
	_, err := db.Exec(tableDestroy)
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("could not drop test tables")
		return err
	}

	return createTestTables(db)
}
