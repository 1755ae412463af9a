package crowdfund

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/crowdfund/pkg/solana"
)

// Accounts:
//  0. [WRITE] Campaign
//  1. [WRITE] Donor escrow, derived with GetDonorEscrowAddress
//  2. [SIGNER] Donor
//
// Any instruction payload is ignored.
func (p *Processor) processDonate(
	log *logrus.Entry,
	programID ed25519.PublicKey,
	accounts []*solana.AccountInfo,
) error {
	if len(accounts) < 3 {
		return reject(log, ErrNotEnoughAccountKeys, "expected campaign, escrow and donor accounts")
	}
	campaignInfo, escrowInfo, donorInfo := accounts[0], accounts[1], accounts[2]

	log = log.WithFields(logrus.Fields{
		"campaign": base58.Encode(campaignInfo.Key),
		"escrow":   base58.Encode(escrowInfo.Key),
		"donor":    base58.Encode(donorInfo.Key),
	})

	if !campaignInfo.IsOwnedBy(programID) {
		return reject(log, ErrWrongOwner, "campaign account is not owned by the program")
	}

	if !escrowInfo.IsOwnedBy(programID) {
		return reject(log, ErrWrongOwner, "escrow account is not owned by the program")
	}

	if !donorInfo.IsSigner {
		return reject(log, ErrUnauthorized, "donor did not sign")
	}

	if campaignInfo == escrowInfo || bytes.Equal(campaignInfo.Key, escrowInfo.Key) {
		return reject(log, ErrInvalidEscrowAddress, "escrow account is the campaign account")
	}

	expectedEscrow, _, err := GetDonorEscrowAddress(programID, campaignInfo.Key, donorInfo.Key)
	if err != nil || !bytes.Equal(expectedEscrow, escrowInfo.Key) {
		return reject(log, ErrInvalidEscrowAddress, "escrow account is not derived from the campaign and donor")
	}

	var campaign CampaignAccount
	if err := campaign.UnmarshalAccountData(campaignInfo.Data); err != nil {
		log.WithError(err).Debug("failed to decode campaign account")
		return reject(log, ErrInvalidAccountData, "invalid campaign account data")
	}
	if !campaign.IsInitialized() {
		return reject(log, ErrUninitializedCampaign, "campaign has not been created")
	}

	// The escrow balance is read exactly once, and both the counter and the
	// transfer are computed from it before anything is mutated.
	donation := escrowInfo.Lamports
	log = log.WithField("amount", donation)

	amountDonated, ok := solana.CheckedAdd(campaign.AmountDonated, donation)
	if !ok {
		return reject(log, ErrArithmeticOverflow, "donation counter would overflow")
	}

	balance, ok := solana.CheckedAdd(campaignInfo.Lamports, donation)
	if !ok {
		return reject(log, ErrArithmeticOverflow, "campaign balance would overflow")
	}

	campaign.AmountDonated = amountDonated
	if campaign.Size() > len(campaignInfo.Data) {
		return reject(log, ErrAccountDataTooSmall, "campaign does not fit in account data")
	}

	campaignInfo.Lamports = balance
	escrowInfo.Lamports = 0

	if err := campaign.MarshalInto(campaignInfo.Data); err != nil {
		return reject(log, ErrAccountDataTooSmall, "campaign does not fit in account data")
	}

	log.WithField("amount_donated", campaign.AmountDonated).Debug("donation processed")
	return nil
}
