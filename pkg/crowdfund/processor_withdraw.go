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
//  1. [WRITE, SIGNER] Admin
func (p *Processor) processWithdraw(
	log *logrus.Entry,
	programID ed25519.PublicKey,
	accounts []*solana.AccountInfo,
	payload []byte,
	rent solana.RentSchedule,
) error {
	if len(accounts) < 2 {
		return reject(log, ErrNotEnoughAccountKeys, "expected campaign and admin accounts")
	}
	campaignInfo, adminInfo := accounts[0], accounts[1]

	log = log.WithFields(logrus.Fields{
		"campaign": base58.Encode(campaignInfo.Key),
		"admin":    base58.Encode(adminInfo.Key),
	})

	if !adminInfo.IsSigner {
		return reject(log, ErrUnauthorized, "admin did not sign")
	}

	if !campaignInfo.IsOwnedBy(programID) {
		return reject(log, ErrWrongOwner, "campaign account is not owned by the program")
	}

	var campaign CampaignAccount
	if err := campaign.UnmarshalAccountData(campaignInfo.Data); err != nil {
		log.WithError(err).Debug("failed to decode campaign account")
		return reject(log, ErrInvalidAccountData, "invalid campaign account data")
	}
	if !campaign.IsInitialized() {
		return reject(log, ErrUninitializedCampaign, "campaign has not been created")
	}

	if !bytes.Equal(campaign.Admin, adminInfo.Key) {
		return reject(log, ErrUnauthorized, "signer is not the campaign admin")
	}

	var request WithdrawRequest
	if err := request.Unmarshal(payload); err != nil {
		log.WithError(err).Debug("failed to decode withdraw payload")
		return reject(log, ErrMalformedPayload, "invalid withdraw payload")
	}

	log = log.WithField("amount", request.Amount)

	minimum := rent.MinimumBalance(uint64(len(campaignInfo.Data)))
	remaining, ok := solana.CheckedSub(campaignInfo.Lamports, request.Amount)
	if !ok || remaining < minimum {
		return reject(log, ErrInsufficientFunds, "withdrawal would leave the campaign below the rent exempt minimum")
	}

	// The campaign and admin may be the same account, in which case nothing
	// moves.
	if campaignInfo == adminInfo || bytes.Equal(campaignInfo.Key, adminInfo.Key) {
		log.Debug("withdrawal to self")
		return nil
	}

	credited, ok := solana.CheckedAdd(adminInfo.Lamports, request.Amount)
	if !ok {
		return reject(log, ErrArithmeticOverflow, "admin balance would overflow")
	}

	campaignInfo.Lamports = remaining
	adminInfo.Lamports = credited

	log.Debug("withdrawal processed")
	return nil
}
