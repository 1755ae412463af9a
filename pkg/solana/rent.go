package solana

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

const (
	// AccountStorageOverhead is the number of bytes charged for every account
	// on top of its data.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear uint64  = 1_000_000_000 / 100 * 365 / (1024 * 1024)
	DefaultExemptionThreshold  float64 = 2.0
	DefaultBurnPercent         uint8   = 50

	RentSize = 8 + 8 + 1
)

// RentSchedule reports the minimum balance for an account to be exempt from
// rent.
type RentSchedule interface {
	MinimumBalance(dataLen uint64) uint64
}

// Rent is the cluster rent configuration, as stored in the rent sysvar.
//
// Reference: https://github.com/solana-labs/solana/blob/master/sdk/program/src/rent.rs
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent returns the rent configuration used by mainnet.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance returns the minimum number of lamports an account with
// dataLen bytes of data must hold to be rent exempt.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	bytes := AccountStorageOverhead + dataLen
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt reports whether balance is enough for dataLen bytes to be rent
// exempt.
func (r Rent) IsExempt(balance, dataLen uint64) bool {
	return balance >= r.MinimumBalance(dataLen)
}

func (r Rent) Marshal() []byte {
	b := make([]byte, RentSize)
	binary.LittleEndian.PutUint64(b, r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(b[8:], math.Float64bits(r.ExemptionThreshold))
	b[16] = r.BurnPercent
	return b
}

func (r *Rent) Unmarshal(data []byte) error {
	if len(data) < RentSize {
		return errors.Errorf("invalid rent size: %d", len(data))
	}

	r.LamportsPerByteYear = binary.LittleEndian.Uint64(data)
	r.ExemptionThreshold = math.Float64frombits(binary.LittleEndian.Uint64(data[8:]))
	r.BurnPercent = data[16]

	if r.ExemptionThreshold < 0 || math.IsNaN(r.ExemptionThreshold) || math.IsInf(r.ExemptionThreshold, 0) {
		return errors.Errorf("invalid exemption threshold: %v", r.ExemptionThreshold)
	}
	if r.BurnPercent > 100 {
		return errors.Errorf("invalid burn percent: %d", r.BurnPercent)
	}
	return nil
}
