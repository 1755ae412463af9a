package tests

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
	"github.com/code-payments/crowdfund/pkg/testutil"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testRoundTrip,
		testStaleVersion,
		testAtomicBatch,
		testGetAllByOwner,
		testInvalidRecords,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s account.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		expected := newRecord(t, newAddress(t))

		_, err := s.Get(ctx, expected.Address)
		assert.Equal(t, account.ErrAccountNotFound, err)

		start := time.Now()

		cloned := expected.Clone()
		require.NoError(t, s.SaveAll(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 1, expected.Version)
		assert.False(t, expected.LastUpdatedAt.Before(start.Add(-time.Millisecond)))
		assert.True(t, expected.Equivalent(&cloned))

		actual, err := s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)

		expected.Lamports = 0
		expected.Data = nil
		require.NoError(t, s.SaveAll(ctx, expected))
		assert.EqualValues(t, 2, expected.Version)

		actual, err = s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)
		assert.EqualValues(t, 0, actual.Lamports)
		assert.Empty(t, actual.Data)

		// Mutating a returned record doesn't affect the store
		actual.Lamports = 42
		actual, err = s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 0, actual.Lamports)
	})
}

func testStaleVersion(t *testing.T, s account.Store) {
	t.Run("testStaleVersion", func(t *testing.T) {
		ctx := context.Background()

		missing := newRecord(t, newAddress(t))
		missing.Version = 1
		assert.Equal(t, account.ErrStaleVersion, s.SaveAll(ctx, missing))

		_, err := s.Get(ctx, missing.Address)
		assert.Equal(t, account.ErrAccountNotFound, err)

		record := newRecord(t, newAddress(t))
		require.NoError(t, s.SaveAll(ctx, record))

		concurrent := record.Clone()

		record.Lamports += 100
		require.NoError(t, s.SaveAll(ctx, record))

		// A writer holding the previous version loses
		concurrent.Lamports += 1
		assert.Equal(t, account.ErrStaleVersion, s.SaveAll(ctx, &concurrent))
		assert.EqualValues(t, 1, concurrent.Version)

		// Re-creating an existing account is also a conflict
		recreated := newRecord(t, record.Address)
		assert.Equal(t, account.ErrStaleVersion, s.SaveAll(ctx, recreated))

		actual, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, record, actual)
	})
}

func testAtomicBatch(t *testing.T, s account.Store) {
	t.Run("testAtomicBatch", func(t *testing.T) {
		ctx := context.Background()

		existing := newRecord(t, newAddress(t))
		require.NoError(t, s.SaveAll(ctx, existing))
		before := existing.Clone()

		created := newRecord(t, newAddress(t))
		existing.Lamports += 500
		stale := newRecord(t, newAddress(t))
		stale.Version = 7

		assert.Equal(t, account.ErrStaleVersion, s.SaveAll(ctx, created, existing, stale))

		_, err := s.Get(ctx, created.Address)
		assert.Equal(t, account.ErrAccountNotFound, err)

		actual, err := s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, &before, actual)

		existing.Version = before.Version
		require.NoError(t, s.SaveAll(ctx, created, existing))
		assert.EqualValues(t, 1, created.Version)
		assert.EqualValues(t, 2, existing.Version)
	})
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		owner := newAddress(t)

		_, err := s.GetAllByOwner(ctx, owner)
		assert.Equal(t, account.ErrAccountNotFound, err)

		var expected []*account.Record
		for i := 0; i < 5; i++ {
			record := newRecord(t, newAddress(t))
			record.Owner = owner
			record.Lamports = uint64(i)
			expected = append(expected, record)
		}
		require.NoError(t, s.SaveAll(ctx, expected...))
		require.NoError(t, s.SaveAll(ctx, newRecord(t, newAddress(t))))

		sort.Slice(expected, func(i, j int) bool {
			return expected[i].Address < expected[j].Address
		})

		actual, err := s.GetAllByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, actual, len(expected))
		for i := range expected {
			assertEquivalentRecords(t, expected[i], actual[i])
		}
	})
}

func testInvalidRecords(t *testing.T, s account.Store) {
	t.Run("testInvalidRecords", func(t *testing.T) {
		ctx := context.Background()

		invalid := newRecord(t, newAddress(t))
		invalid.Owner = ""
		assert.Error(t, s.SaveAll(ctx, invalid))

		record := newRecord(t, newAddress(t))
		duplicate := record.Clone()
		assert.Error(t, s.SaveAll(ctx, record, &duplicate))

		_, err := s.Get(ctx, record.Address)
		assert.Equal(t, account.ErrAccountNotFound, err)
	})
}

func newAddress(t *testing.T) string {
	return base58.Encode(testutil.GenerateSolanaKeys(t, 1)[0])
}

func newRecord(t *testing.T, address string) *account.Record {
	return &account.Record{
		Address:  address,
		Owner:    newAddress(t),
		Lamports: 890880,
		Data:     []byte("campaign"),
	}
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *account.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, len(obj1.Data), len(obj2.Data))
	assert.True(t, obj1.Equivalent(obj2))
	assert.Equal(t, obj1.Executable, obj2.Executable)
	assert.Equal(t, obj1.Version, obj2.Version)
	assert.Equal(t, obj1.LastUpdatedAt.Unix(), obj2.LastUpdatedAt.Unix())
}
