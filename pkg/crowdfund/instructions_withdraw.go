package crowdfund

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/crowdfund/pkg/solana"
)

type WithdrawInstructionArgs struct {
	Amount uint64
}

type WithdrawInstructionAccounts struct {
	Campaign ed25519.PublicKey
	Admin    ed25519.PublicKey
}

func NewWithdrawInstruction(
	accounts *WithdrawInstructionAccounts,
	args *WithdrawInstructionArgs,
) solana.Instruction {
	request := &WithdrawRequest{
		Amount: args.Amount,
	}

	return solana.NewInstruction(
		PROGRAM_ID,
		newInstructionData(InstructionTypeWithdraw, request.Marshal()),
		solana.NewAccountMeta(accounts.Campaign, false),
		solana.NewAccountMeta(accounts.Admin, true),
	)
}

func WithdrawInstructionFromInstruction(i solana.Instruction) (*WithdrawInstructionArgs, *WithdrawInstructionAccounts, error) {
	payload, err := checkInstruction(i, InstructionTypeWithdraw, 2)
	if err != nil {
		return nil, nil, err
	}

	var request WithdrawRequest
	if err := request.Unmarshal(payload); err != nil {
		return nil, nil, errors.Wrap(err, "invalid withdraw payload")
	}

	return &WithdrawInstructionArgs{
			Amount: request.Amount,
		}, &WithdrawInstructionAccounts{
			Campaign: i.Accounts[0].PublicKey,
			Admin:    i.Accounts[1].PublicKey,
		}, nil
}
