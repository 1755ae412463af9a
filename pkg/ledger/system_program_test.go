package ledger

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/crowdfund/pkg/solana"
	"github.com/code-payments/crowdfund/pkg/solana/system"
	"github.com/code-payments/crowdfund/pkg/testutil"
)

func TestSystemProgram_CreateAccount(t *testing.T) {
	env := setup(t)

	funder := env.newFundedKeypair(t, 5_000_000)
	created := testutil.GenerateSolanaKeypair(t)
	owner := testutil.GenerateSolanaKeys(t, 1)[0]
	minimum := env.rent.MinimumBalance(82)

	signers := []ed25519.PrivateKey{funder, created}
	require.NoError(t, env.ledger.Execute(env.ctx, signers, system.CreateAccount(public(funder), public(created), owner, minimum, 82)))

	info := env.getAccount(t, public(created))
	assert.Equal(t, owner, info.Owner)
	assert.Equal(t, minimum, info.Lamports)
	assert.Equal(t, make([]byte, 82), info.Data)
	assert.EqualValues(t, 5_000_000-minimum, env.getAccount(t, public(funder)).Lamports)

	// The address is now in use
	err := env.ledger.Execute(env.ctx, signers, system.CreateAccount(public(funder), public(created), owner, minimum, 82))
	testutil.AssertCustomInstructionError(t, err, 0, uint32(SystemErrorAccountAlreadyInUse))

	// The new account must sign
	other := testutil.GenerateSolanaKeypair(t)
	err = env.ledger.Execute(env.ctx, []ed25519.PrivateKey{funder}, system.CreateAccount(public(funder), public(other), owner, minimum, 82))
	testutil.AssertInstructionError(t, err, 0, solana.InstructionErrorMissingRequiredSignature)

	err = env.ledger.Execute(env.ctx, []ed25519.PrivateKey{funder, other}, system.CreateAccount(public(funder), public(other), owner, math.MaxInt64, 0))
	testutil.AssertCustomInstructionError(t, err, 0, uint32(SystemErrorResultWithNegativeLamports))

	err = env.ledger.Execute(env.ctx, []ed25519.PrivateKey{funder, other}, system.CreateAccount(public(funder), public(other), owner, 0, maxPermittedDataLength+1))
	testutil.AssertCustomInstructionError(t, err, 0, uint32(SystemErrorInvalidAccountDataLength))

	_, err = env.ledger.GetAccount(env.ctx, public(other))
	assert.Equal(t, ErrAccountNotFound, err)
	assert.EqualValues(t, 5_000_000-minimum, env.getAccount(t, public(funder)).Lamports)
}

func TestSystemProgram_Transfer(t *testing.T) {
	env := setup(t)

	from := env.newFundedKeypair(t, 1_000)
	to := testutil.GenerateSolanaKeys(t, 1)[0]

	require.NoError(t, env.ledger.Execute(env.ctx, []ed25519.PrivateKey{from}, system.Transfer(public(from), to, 400)))
	assert.EqualValues(t, 600, env.getAccount(t, public(from)).Lamports)
	assert.EqualValues(t, 400, env.getAccount(t, to).Lamports)

	err := env.ledger.Execute(env.ctx, []ed25519.PrivateKey{from}, system.Transfer(public(from), to, 601))
	testutil.AssertCustomInstructionError(t, err, 0, uint32(SystemErrorResultWithNegativeLamports))

	// Transfers to self are a no-op
	require.NoError(t, env.ledger.Execute(env.ctx, []ed25519.PrivateKey{from}, system.Transfer(public(from), public(from), 600)))
	assert.EqualValues(t, 600, env.getAccount(t, public(from)).Lamports)

	// Both transfers are undone when the second fails
	err = env.ledger.Execute(
		env.ctx,
		[]ed25519.PrivateKey{from},
		system.Transfer(public(from), to, 100),
		system.Transfer(public(from), to, 501),
	)
	testutil.AssertCustomInstructionError(t, err, 1, uint32(SystemErrorResultWithNegativeLamports))
	assert.EqualValues(t, 600, env.getAccount(t, public(from)).Lamports)
	assert.EqualValues(t, 400, env.getAccount(t, to).Lamports)
}

func TestSystemProgram_TransferFromProgramAccount(t *testing.T) {
	env := setup(t)

	owned := testutil.GenerateSolanaKeypair(t)
	program := testutil.GenerateSolanaKeys(t, 1)[0]
	to := testutil.GenerateSolanaKeys(t, 1)[0]
	require.NoError(t, env.ledger.SetAccount(env.ctx, &solana.AccountInfo{
		Key:      public(owned),
		Owner:    program,
		Lamports: 1_000,
	}))

	// Only the owning program can debit an account, even with its signature
	err := env.ledger.Execute(env.ctx, []ed25519.PrivateKey{owned}, system.Transfer(public(owned), to, 1))
	testutil.AssertInstructionError(t, err, 0, solana.InstructionErrorExternalAccountLamportSpend)
}

func TestSystemProgram_InvalidInstructions(t *testing.T) {
	env := setup(t)

	from := env.newFundedKeypair(t, 1_000)
	to := testutil.GenerateSolanaKeys(t, 1)[0]

	assign := make([]byte, 36)
	binary.LittleEndian.PutUint32(assign, 1)

	for _, data := range [][]byte{
		nil,
		{2, 0, 0},
		assign,
		system.Transfer(public(from), to, 1).Data[:8],
	} {
		err := env.ledger.Execute(
			env.ctx,
			[]ed25519.PrivateKey{from},
			solana.NewInstruction(system.ProgramKey[:], data, solana.NewAccountMeta(public(from), true), solana.NewAccountMeta(to, false)),
		)
		testutil.AssertInstructionError(t, err, 0, solana.InstructionErrorInvalidInstructionData)
	}

	err := env.ledger.Execute(
		env.ctx,
		[]ed25519.PrivateKey{from},
		solana.NewInstruction(system.ProgramKey[:], system.Transfer(public(from), to, 1).Data, solana.NewAccountMeta(public(from), true)),
	)
	testutil.AssertInstructionError(t, err, 0, solana.InstructionErrorNotEnoughAccountKeys)
}
