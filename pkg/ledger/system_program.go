package ledger

import (
	"crypto/ed25519"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/crowdfund/pkg/solana"
	"github.com/code-payments/crowdfund/pkg/solana/system"
)

// maxPermittedDataLength is the largest data region CreateAccount allocates
const maxPermittedDataLength = 10 * 1024 * 1024

// SystemError is a custom error returned by the native system program
//
// Source: https://github.com/solana-labs/solana/blob/master/sdk/program/src/system_instruction.rs
type SystemError uint32

const (
	SystemErrorAccountAlreadyInUse SystemError = iota
	SystemErrorResultWithNegativeLamports
	SystemErrorInvalidProgramId
	SystemErrorInvalidAccountDataLength
)

var systemErrorMessages = map[SystemError]string{
	SystemErrorAccountAlreadyInUse:        "an account with the same address already exists",
	SystemErrorResultWithNegativeLamports: "account does not have enough SOL to perform the operation",
	SystemErrorInvalidProgramId:           "cannot assign account to this program id",
	SystemErrorInvalidAccountDataLength:   "cannot allocate account data of this length",
}

func (e SystemError) Error() string {
	if msg, ok := systemErrorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown system program error: %d", uint32(e))
}

// CustomErrorCode implements solana.CustomErrorCoder
func (e SystemError) CustomErrorCode() uint32 {
	return uint32(e)
}

type systemProgram struct {
	log *logrus.Entry
}

func newSystemProgram() *systemProgram {
	return &systemProgram{
		log: logrus.StandardLogger().WithField("type", "ledger/system_program"),
	}
}

// Process implements Program.Process for the CreateAccount and Transfer
// system instructions
func (p *systemProgram) Process(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte, _ solana.RentSchedule) error {
	if len(accounts) < 2 {
		return solana.NewInstructionError(0, solana.InstructionErrorNotEnoughAccountKeys)
	}

	instruction := solana.NewInstruction(
		programID,
		data,
		solana.NewAccountMeta(accounts[0].Key, accounts[0].IsSigner),
		solana.NewAccountMeta(accounts[1].Key, accounts[1].IsSigner),
	)

	command, err := system.GetCommand(data)
	if err != nil {
		return solana.NewInstructionError(0, solana.InstructionErrorInvalidInstructionData)
	}

	switch command {
	case system.CommandCreateAccount:
		decompiled, err := system.DecompileCreateAccount(instruction)
		if err != nil {
			return solana.NewInstructionError(0, solana.InstructionErrorInvalidInstructionData)
		}
		return p.createAccount(accounts[0], accounts[1], decompiled)
	case system.CommandTransfer:
		decompiled, err := system.DecompileTransfer(instruction)
		if err != nil {
			return solana.NewInstructionError(0, solana.InstructionErrorInvalidInstructionData)
		}
		return p.transfer(accounts[0], accounts[1], decompiled.Lamports)
	}

	p.log.WithField("command", command).Debug("unsupported system instruction")
	return solana.NewInstructionError(0, solana.InstructionErrorInvalidInstructionData)
}

func (p *systemProgram) createAccount(funder, created *solana.AccountInfo, args *system.DecompiledCreateAccount) error {
	if !funder.IsSigner || !created.IsSigner {
		return solana.NewInstructionError(0, solana.InstructionErrorMissingRequiredSignature)
	}

	if created.Lamports > 0 || len(created.Data) > 0 || !created.IsOwnedBy(system.ProgramKey[:]) {
		p.log.WithField("account", created.String()).Debug("create account: address already in use")
		return SystemErrorAccountAlreadyInUse
	}

	if args.Size > maxPermittedDataLength {
		return SystemErrorInvalidAccountDataLength
	}

	remaining, ok := solana.CheckedSub(funder.Lamports, args.Lamports)
	if !ok {
		return SystemErrorResultWithNegativeLamports
	}

	funder.Lamports = remaining
	created.Lamports = args.Lamports
	created.Data = make([]byte, args.Size)
	created.Owner = args.Owner

	return nil
}

func (p *systemProgram) transfer(from, to *solana.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return solana.NewInstructionError(0, solana.InstructionErrorMissingRequiredSignature)
	}

	if len(from.Data) > 0 {
		p.log.WithField("account", from.String()).Debug("transfer: from must not carry data")
		return solana.NewInstructionError(0, solana.InstructionErrorInvalidArgument)
	}

	if from == to {
		if from.Lamports < lamports {
			return SystemErrorResultWithNegativeLamports
		}
		return nil
	}

	remaining, ok := solana.CheckedSub(from.Lamports, lamports)
	if !ok {
		return SystemErrorResultWithNegativeLamports
	}
	credited, ok := solana.CheckedAdd(to.Lamports, lamports)
	if !ok {
		return solana.NewInstructionError(0, solana.InstructionErrorArithmeticOverflow)
	}

	from.Lamports = remaining
	to.Lamports = credited

	return nil
}
