package account

import (
	"math"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/crowdfund/pkg/testutil"
)

func newTestRecord(t *testing.T) *Record {
	keys := testutil.GenerateSolanaKeys(t, 2)
	return &Record{
		Address:  base58.Encode(keys[0]),
		Owner:    base58.Encode(keys[1]),
		Lamports: 1461600,
		Data:     []byte{1, 2, 3},
	}
}

func TestValidate(t *testing.T) {
	record := newTestRecord(t)
	require.NoError(t, record.Validate())

	for _, invalid := range []func(r *Record){
		func(r *Record) { r.Address = "" },
		func(r *Record) { r.Owner = "" },
		func(r *Record) { r.Address = "0OIl" },
		func(r *Record) { r.Owner = base58.Encode([]byte{1, 2, 3}) },
		func(r *Record) { r.Lamports = math.MaxInt64 + 1 },
	} {
		cloned := record.Clone()
		invalid(&cloned)
		assert.Error(t, cloned.Validate())
	}
}

func TestValidateBatch(t *testing.T) {
	a := newTestRecord(t)
	b := newTestRecord(t)
	require.NoError(t, ValidateBatch([]*Record{a, b}))

	duplicate := a.Clone()
	assert.Error(t, ValidateBatch([]*Record{a, b, &duplicate}))

	invalid := newTestRecord(t)
	invalid.Owner = ""
	assert.Error(t, ValidateBatch([]*Record{a, invalid}))
}

func TestCloneAndCopyTo(t *testing.T) {
	record := newTestRecord(t)
	record.Version = 3

	cloned := record.Clone()
	assert.Equal(t, *record, cloned)

	cloned.Data[0] = 0xff
	assert.EqualValues(t, 1, record.Data[0])

	var copied Record
	record.CopyTo(&copied)
	assert.Equal(t, *record, copied)
	copied.Data[1] = 0xff
	assert.EqualValues(t, 2, record.Data[1])

	record.Data = nil
	assert.Nil(t, record.Clone().Data)
}

func TestEquivalentAndEmpty(t *testing.T) {
	record := newTestRecord(t)
	other := record.Clone()
	other.Version = 10
	assert.True(t, record.Equivalent(&other))

	other.Lamports++
	assert.False(t, record.Equivalent(&other))

	assert.False(t, record.IsEmpty())
	record.Lamports = 0
	record.Data = []byte{}
	assert.True(t, record.IsEmpty())
}
