package ledger

import (
	"bytes"
	"crypto/ed25519"
	"math/bits"

	"github.com/mr-tron/base58"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
	"github.com/code-payments/crowdfund/pkg/solana"
	"github.com/code-payments/crowdfund/pkg/solana/system"
)

// invocation is the working state of a single Execute attempt. Accounts are
// shared by key, so an account referenced twice is a single handle.
type invocation struct {
	keys     []string
	loaded   map[string]*account.Record
	accounts map[string]*solana.AccountInfo
}

// distinctKeys returns every account key referenced by the instructions, in
// order of first appearance
func distinctKeys(instructions []solana.Instruction) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, instruction := range instructions {
		for _, meta := range instruction.Accounts {
			key := base58.Encode(meta.PublicKey)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

func newInvocation(keys []string, loaded map[string]*account.Record, instructions []solana.Instruction, signers map[string]struct{}) (*invocation, error) {
	inv := &invocation{
		keys:     keys,
		loaded:   loaded,
		accounts: make(map[string]*solana.AccountInfo, len(keys)),
	}

	for _, key := range keys {
		info, err := toAccountInfo(loaded[key])
		if err != nil {
			return nil, err
		}
		inv.accounts[key] = info
	}

	for i, instruction := range instructions {
		for _, meta := range instruction.Accounts {
			key := base58.Encode(meta.PublicKey)
			info := inv.accounts[key]

			if meta.IsSigner {
				if _, ok := signers[key]; !ok {
					return nil, instructionFailure(solana.NewInstructionError(i, solana.InstructionErrorMissingRequiredSignature))
				}
				info.IsSigner = true
			}
			if meta.IsWritable {
				info.IsWritable = true
			}
		}
	}

	return inv, nil
}

// run executes each instruction in order, verifying runtime invariants after
// each one. Any failure is reported as a *solana.TransactionError.
func (inv *invocation) run(programs map[string]Program, instructions []solana.Instruction, rent solana.RentSchedule) error {
	for i, instruction := range instructions {
		program, ok := programs[base58.Encode(instruction.Program)]
		if !ok {
			return instructionFailure(solana.NewInstructionError(i, solana.InstructionErrorIncorrectProgramID))
		}

		accounts := make([]*solana.AccountInfo, len(instruction.Accounts))
		pre := make(map[string]*solana.AccountInfo)
		for j, meta := range instruction.Accounts {
			key := base58.Encode(meta.PublicKey)
			accounts[j] = inv.accounts[key]
			if _, ok := pre[key]; !ok {
				pre[key] = inv.accounts[key].Clone()
			}
		}

		if err := program.Process(instruction.Program, accounts, instruction.Data, rent); err != nil {
			return instructionFailure(solana.InstructionErrorFromProgramError(i, err))
		}

		if key := inv.verify(instruction.Program, pre); key != "" {
			return instructionFailure(solana.NewInstructionError(i, key))
		}
	}

	return nil
}

// verify checks the changes a program made to the accounts of one
// instruction, following the rules the Solana runtime enforces
func (inv *invocation) verify(program ed25519.PublicKey, pre map[string]*solana.AccountInfo) solana.InstructionErrorKey {
	var preHi, preLo, postHi, postLo uint64

	for key, before := range pre {
		after := inv.accounts[key]
		ownedByProgram := before.IsOwnedBy(program)
		dataChanged := !bytes.Equal(before.Data, after.Data)

		if !bytes.Equal(before.Owner, after.Owner) {
			if !after.IsWritable || before.Executable || !ownedByProgram || !isZeroed(after.Data) {
				return solana.InstructionErrorModifiedProgramID
			}
		}

		if after.Lamports < before.Lamports && !ownedByProgram {
			return solana.InstructionErrorExternalAccountLamportSpend
		}
		if after.Lamports != before.Lamports && !after.IsWritable {
			return solana.InstructionErrorReadonlyLamportChange
		}

		if len(after.Data) != len(before.Data) && !canAllocate(program, before) {
			return solana.InstructionErrorAccountDataSizeChanged
		}
		if dataChanged && !after.IsWritable {
			return solana.InstructionErrorReadonlyDataModified
		}
		if dataChanged && !ownedByProgram {
			return solana.InstructionErrorExternalAccountDataModified
		}

		if after.Executable != before.Executable {
			return solana.InstructionErrorModifiedProgramID
		}

		preHi, preLo = add128(preHi, preLo, before.Lamports)
		postHi, postLo = add128(postHi, postLo, after.Lamports)
	}

	if preHi != postHi || preLo != postLo {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return ""
}

// changed returns the records for every account whose state differs from
// what was loaded. Empty accounts that never existed are not persisted.
func (inv *invocation) changed() []*account.Record {
	var res []*account.Record
	for _, key := range inv.keys {
		loaded := inv.loaded[key]
		updated := fromAccountInfo(key, inv.accounts[key], loaded.Version)
		if updated.Equivalent(loaded) {
			continue
		}
		if loaded.Version == 0 && updated.IsEmpty() {
			continue
		}
		res = append(res, updated)
	}
	return res
}

// canAllocate reports whether the system program may assign a data region
// to a freshly created account
func canAllocate(program ed25519.PublicKey, before *solana.AccountInfo) bool {
	return bytes.Equal(program, system.ProgramKey[:]) &&
		before.IsOwnedBy(system.ProgramKey[:]) &&
		len(before.Data) == 0
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func add128(hi, lo, v uint64) (uint64, uint64) {
	lo, carry := bits.Add64(lo, v, 0)
	return hi + carry, lo
}

func instructionFailure(err *solana.InstructionError) error {
	txnErr, convErr := solana.TransactionErrorFromInstructionError(err)
	if convErr != nil {
		return err
	}
	return txnErr
}

func emptyRecord(address string) *account.Record {
	return &account.Record{
		Address: address,
		Owner:   base58.Encode(system.ProgramKey[:]),
		Data:    []byte{},
	}
}

func toAccountInfo(record *account.Record) (*solana.AccountInfo, error) {
	key, err := base58.Decode(record.Address)
	if err != nil {
		return nil, err
	}
	owner, err := base58.Decode(record.Owner)
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(record.Data))
	copy(data, record.Data)

	return &solana.AccountInfo{
		Key:        key,
		Owner:      owner,
		Lamports:   record.Lamports,
		Data:       data,
		Executable: record.Executable,
	}, nil
}

func fromAccountInfo(address string, info *solana.AccountInfo, version uint64) *account.Record {
	data := make([]byte, len(info.Data))
	copy(data, info.Data)

	return &account.Record{
		Address:    address,
		Owner:      base58.Encode(info.Owner),
		Lamports:   info.Lamports,
		Data:       data,
		Executable: info.Executable,
		Version:    version,
	}
}
