package crowdfund

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/crowdfund/pkg/solana"
)

// Accounts:
//  0. [WRITE] Campaign, allocated and owned by the program
//  1. [SIGNER] Initializer
func (p *Processor) processCreateCampaign(
	log *logrus.Entry,
	programID ed25519.PublicKey,
	accounts []*solana.AccountInfo,
	payload []byte,
	rent solana.RentSchedule,
) error {
	if len(accounts) < 2 {
		return reject(log, ErrNotEnoughAccountKeys, "expected campaign and initializer accounts")
	}
	campaignInfo, initializerInfo := accounts[0], accounts[1]

	log = log.WithFields(logrus.Fields{
		"campaign":    base58.Encode(campaignInfo.Key),
		"initializer": base58.Encode(initializerInfo.Key),
	})

	if !initializerInfo.IsSigner {
		return reject(log, ErrUnauthorized, "initializer did not sign")
	}

	if !campaignInfo.IsOwnedBy(programID) {
		return reject(log, ErrWrongOwner, "campaign account is not owned by the program")
	}

	var campaign CampaignAccount
	if err := campaign.Unmarshal(payload); err != nil {
		log.WithError(err).Debug("failed to decode campaign payload")
		return reject(log, ErrMalformedPayload, "invalid campaign payload")
	}

	if !bytes.Equal(campaign.Admin, initializerInfo.Key) {
		return reject(log, ErrAdminMismatch, "campaign admin is not the initializer")
	}

	dataLen := uint64(len(campaignInfo.Data))
	if campaignInfo.Lamports < rent.MinimumBalance(dataLen) {
		return reject(log, ErrNotRentExempt, "campaign account balance is below the rent exempt minimum")
	}

	var existing CampaignAccount
	if err := existing.UnmarshalAccountData(campaignInfo.Data); err == nil && existing.IsInitialized() {
		return reject(log, ErrAlreadyInitialized, "campaign account already holds a campaign")
	}

	campaign.AmountDonated = 0
	if err := campaign.MarshalInto(campaignInfo.Data); err != nil {
		return reject(log, ErrAccountDataTooSmall, "campaign does not fit in account data")
	}

	log.WithField("name", campaign.Name).Debug("campaign created")
	return nil
}
