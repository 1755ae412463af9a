package crowdfund

import (
	"crypto/ed25519"

	"github.com/code-payments/crowdfund/pkg/solana"
)

type DonateInstructionAccounts struct {
	Campaign ed25519.PublicKey
	Escrow   ed25519.PublicKey
	Donor    ed25519.PublicKey
}

// NewDonateInstruction builds a donate instruction. Escrow is the donor's
// escrow address from GetDonorEscrowAddress.
func NewDonateInstruction(accounts *DonateInstructionAccounts) solana.Instruction {
	return solana.NewInstruction(
		PROGRAM_ID,
		newInstructionData(InstructionTypeDonate, nil),
		solana.NewAccountMeta(accounts.Campaign, false),
		solana.NewAccountMeta(accounts.Escrow, false),
		solana.NewReadonlyAccountMeta(accounts.Donor, true),
	)
}

func DonateInstructionFromInstruction(i solana.Instruction) (*DonateInstructionAccounts, error) {
	if _, err := checkInstruction(i, InstructionTypeDonate, 3); err != nil {
		return nil, err
	}

	return &DonateInstructionAccounts{
		Campaign: i.Accounts[0].PublicKey,
		Escrow:   i.Accounts[1].PublicKey,
		Donor:    i.Accounts[2].PublicKey,
	}, nil
}
