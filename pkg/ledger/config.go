package ledger

import (
	"time"

	"github.com/code-payments/crowdfund/pkg/config"
	"github.com/code-payments/crowdfund/pkg/config/env"
	"github.com/code-payments/crowdfund/pkg/config/memory"
	"github.com/code-payments/crowdfund/pkg/config/wrapper"
	"github.com/code-payments/crowdfund/pkg/solana"
)

const (
	envConfigPrefix = "LEDGER_SERVICE_"

	RentLamportsPerByteYearConfigEnvName = envConfigPrefix + "RENT_LAMPORTS_PER_BYTE_YEAR"
	defaultRentLamportsPerByteYear       = solana.DefaultLamportsPerByteYear

	RentExemptionThresholdConfigEnvName = envConfigPrefix + "RENT_EXEMPTION_THRESHOLD"
	defaultRentExemptionThreshold       = solana.DefaultExemptionThreshold

	RentBurnPercentConfigEnvName = envConfigPrefix + "RENT_BURN_PERCENT"
	defaultRentBurnPercent       = uint64(solana.DefaultBurnPercent)

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	MaxCommitAttemptsConfigEnvName = envConfigPrefix + "MAX_COMMIT_ATTEMPTS"
	defaultMaxCommitAttempts       = 3

	CommitBackoffConfigEnvName = envConfigPrefix + "COMMIT_BACKOFF"
	defaultCommitBackoff       = 10 * time.Millisecond
)

type conf struct {
	rentLamportsPerByteYear config.Uint64
	rentExemptionThreshold  config.Float64
	rentBurnPercent         config.Uint64
	lockStripes             config.Uint64
	maxCommitAttempts       config.Uint64
	commitBackoff           config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: env.NewUint64Config(RentLamportsPerByteYearConfigEnvName, defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  env.NewFloat64Config(RentExemptionThresholdConfigEnvName, defaultRentExemptionThreshold),
			rentBurnPercent:         env.NewUint64Config(RentBurnPercentConfigEnvName, defaultRentBurnPercent),
			lockStripes:             env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			maxCommitAttempts:       env.NewUint64Config(MaxCommitAttemptsConfigEnvName, defaultMaxCommitAttempts),
			commitBackoff:           env.NewDurationConfig(CommitBackoffConfigEnvName, defaultCommitBackoff),
		}
	}
}

type testOverrides struct {
	rent              *solana.Rent
	maxCommitAttempts uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	rent := solana.DefaultRent()
	if overrides.rent != nil {
		rent = *overrides.rent
	}

	maxCommitAttempts := uint64(defaultMaxCommitAttempts)
	if overrides.maxCommitAttempts > 0 {
		maxCommitAttempts = overrides.maxCommitAttempts
	}

	return func() *conf {
		return &conf{
			rentLamportsPerByteYear: wrapper.NewUint64Config(memory.NewConfig(rent.LamportsPerByteYear), defaultRentLamportsPerByteYear),
			rentExemptionThreshold:  wrapper.NewFloat64Config(memory.NewConfig(rent.ExemptionThreshold), defaultRentExemptionThreshold),
			rentBurnPercent:         wrapper.NewUint64Config(memory.NewConfig(uint64(rent.BurnPercent)), defaultRentBurnPercent),
			lockStripes:             wrapper.NewUint64Config(memory.NewConfig(uint64(16)), defaultLockStripes),
			maxCommitAttempts:       wrapper.NewUint64Config(memory.NewConfig(maxCommitAttempts), defaultMaxCommitAttempts),
			commitBackoff:           wrapper.NewDurationConfig(memory.NewConfig(time.Millisecond), defaultCommitBackoff),
		}
	}
}
