package crowdfund

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/crowdfund/pkg/solana"
)

func TestProgramError(t *testing.T) {
	assert.EqualValues(t, 0x1770, ErrUnrecognizedInstruction)
	assert.EqualValues(t, 0x1776, ErrInsufficientFunds)
	assert.EqualValues(t, 0x177d, ErrUninitializedCampaign)

	for code, kind := range map[ProgramError]string{
		ErrUnrecognizedInstruction: "UnrecognizedInstruction",
		ErrMalformedPayload:        "MalformedPayload",
		ErrUnauthorized:            "Unauthorized",
		ErrWrongOwner:              "WrongOwner",
		ErrAdminMismatch:           "AdminMismatch",
		ErrNotRentExempt:           "NotRentExempt",
		ErrInsufficientFunds:       "InsufficientFunds",
		ErrUninitializedCampaign:   "UninitializedCampaign",
	} {
		assert.Equal(t, kind, code.Kind())
		assert.NotEmpty(t, code.Error())

		actual, ok := ProgramErrorFromCode(code.CustomErrorCode())
		assert.True(t, ok)
		assert.Equal(t, code, actual)
	}

	_, ok := ProgramErrorFromCode(0)
	assert.False(t, ok)
	assert.Equal(t, "Unknown", ProgramError(0).Kind())
	assert.Equal(t, "unknown crowdfund program error: 0x0", ProgramError(0).Error())
}

func TestProgramError_InstructionError(t *testing.T) {
	instructionErr := solana.InstructionErrorFromProgramError(1, ErrAdminMismatch)
	assert.Equal(t, 1, instructionErr.Index)
	assert.Equal(t, solana.InstructionErrorCustom, instructionErr.ErrorKey())
	require.NotNil(t, instructionErr.CustomError())
	assert.EqualValues(t, ErrAdminMismatch, *instructionErr.CustomError())
}
