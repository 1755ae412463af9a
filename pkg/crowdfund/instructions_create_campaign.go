package crowdfund

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/crowdfund/pkg/solana"
)

type CreateCampaignInstructionArgs struct {
	Admin       ed25519.PublicKey
	Name        string
	Description string
	ImageLink   string
}

type CreateCampaignInstructionAccounts struct {
	Campaign    ed25519.PublicKey
	Initializer ed25519.PublicKey
}

// NewCreateCampaignInstruction builds a create instruction. The campaign
// account must already be allocated and assigned to the program. A nil admin
// defaults to the initializer.
func NewCreateCampaignInstruction(
	accounts *CreateCampaignInstructionAccounts,
	args *CreateCampaignInstructionArgs,
) (solana.Instruction, error) {
	admin := args.Admin
	if admin == nil {
		admin = accounts.Initializer
	}
	if len(admin) != ed25519.PublicKeySize {
		return solana.Instruction{}, errors.Errorf("invalid admin key length: %d", len(admin))
	}

	campaign := &CampaignAccount{
		Admin:       admin,
		Name:        args.Name,
		Description: args.Description,
		ImageLink:   args.ImageLink,
	}

	return solana.NewInstruction(
		PROGRAM_ID,
		newInstructionData(InstructionTypeCreateCampaign, campaign.Marshal()),
		solana.NewAccountMeta(accounts.Campaign, false),
		solana.NewReadonlyAccountMeta(accounts.Initializer, true),
	), nil
}

func CreateCampaignInstructionFromInstruction(i solana.Instruction) (*CreateCampaignInstructionArgs, *CreateCampaignInstructionAccounts, error) {
	payload, err := checkInstruction(i, InstructionTypeCreateCampaign, 2)
	if err != nil {
		return nil, nil, err
	}

	var campaign CampaignAccount
	if err := campaign.Unmarshal(payload); err != nil {
		return nil, nil, errors.Wrap(err, "invalid create campaign payload")
	}

	return &CreateCampaignInstructionArgs{
			Admin:       campaign.Admin,
			Name:        campaign.Name,
			Description: campaign.Description,
			ImageLink:   campaign.ImageLink,
		}, &CreateCampaignInstructionAccounts{
			Campaign:    i.Accounts[0].PublicKey,
			Initializer: i.Accounts[1].PublicKey,
		}, nil
}

func checkInstruction(i solana.Instruction, expected InstructionType, accountCount int) ([]byte, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, solana.ErrIncorrectProgram
	}

	t, payload, err := ParseInstruction(i.Data)
	if err != nil || t != expected {
		return nil, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) != accountCount {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return payload, nil
}
