package ledger

import (
	"crypto/ed25519"

	"github.com/code-payments/crowdfund/pkg/solana"
)

// Program is an on-chain program entrypoint the ledger can invoke. Process
// mutates accounts in place; the ledger discards every change when it
// returns an error.
type Program interface {
	Process(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte, rent solana.RentSchedule) error
}

// ProgramFunc adapts a function to a Program
type ProgramFunc func(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte, rent solana.RentSchedule) error

// Process implements Program.Process
func (f ProgramFunc) Process(programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte, rent solana.RentSchedule) error {
	return f(programID, accounts, data, rent)
}
