package crowdfund

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/crowdfund/pkg/solana"
)

// Processor is the crowdfund program entrypoint. It holds no state between
// invocations; everything an instruction needs is passed to Process.
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "crowdfund/processor"),
	}
}

// Process runs a single crowdfund instruction against the accounts it
// references. On error, the caller must discard every change made to
// accounts.
func (p *Processor) Process(
	programID ed25519.PublicKey,
	accounts []*solana.AccountInfo,
	data []byte,
	rent solana.RentSchedule,
) error {
	instructionType, payload, err := ParseInstruction(data)
	if err != nil {
		if len(data) > 0 {
			p.log.WithField("tag", data[0]).Warn("didn't find the entrypoint required")
		}
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"program":     base58.Encode(programID),
		"instruction": instructionType.String(),
	})

	switch instructionType {
	case InstructionTypeCreateCampaign:
		return p.processCreateCampaign(log, programID, accounts, payload, rent)
	case InstructionTypeWithdraw:
		return p.processWithdraw(log, programID, accounts, payload, rent)
	case InstructionTypeDonate:
		return p.processDonate(log, programID, accounts)
	}

	return ErrUnrecognizedInstruction
}

func reject(log *logrus.Entry, err ProgramError, reason string) error {
	log.WithFields(logrus.Fields{
		"error":  err.Kind(),
		"reason": reason,
	}).Debug("instruction rejected")
	return err
}
