package crowdfund

import (
	"crypto/ed25519"

	"github.com/code-payments/crowdfund/pkg/solana"
)

var (
	escrowPrefix = []byte("escrow")
)

// GetDonorEscrowAddress derives the escrow account a donor funds before
// donating to a campaign.
func GetDonorEscrowAddress(program, campaign, donor ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		program,
		escrowPrefix,
		campaign,
		donor,
	)
}
