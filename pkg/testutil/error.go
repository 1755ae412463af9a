package testutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/crowdfund/pkg/solana"
)

// AssertInstructionError verifies that the provided error is a transaction
// error for the instruction at index with the provided error key.
func AssertInstructionError(t *testing.T, err error, index int, key solana.InstructionErrorKey) {
	instructionErr := requireInstructionError(t, err)
	assert.Equal(t, index, instructionErr.Index)
	assert.Equal(t, key, instructionErr.ErrorKey())
}

// AssertCustomInstructionError verifies that the provided error is a
// transaction error for the instruction at index with the provided custom
// program error code.
func AssertCustomInstructionError(t *testing.T, err error, index int, code uint32) {
	instructionErr := requireInstructionError(t, err)
	assert.Equal(t, index, instructionErr.Index)
	require.NotNil(t, instructionErr.CustomError())
	assert.EqualValues(t, code, *instructionErr.CustomError())
}

func requireInstructionError(t *testing.T, err error) *solana.InstructionError {
	require.Error(t, err)

	var txnErr *solana.TransactionError
	require.True(t, errors.As(err, &txnErr), "unexpected error type: %v", err)
	assert.Equal(t, solana.TransactionErrorInstructionError, txnErr.ErrorKey())
	require.NotNil(t, txnErr.InstructionError())
	return txnErr.InstructionError()
}
