package crowdfund

import (
	"github.com/pkg/errors"

	"github.com/code-payments/crowdfund/pkg/solana/binary"
)

const WithdrawRequestSize = 8 // amount

// WithdrawRequest is the payload of the withdraw instruction. It is never
// persisted.
type WithdrawRequest struct {
	Amount uint64
}

func (obj *WithdrawRequest) Marshal() []byte {
	data := make([]byte, WithdrawRequestSize)

	var offset int
	binary.PutUint64(data[offset:], obj.Amount, &offset)

	return data
}

func (obj *WithdrawRequest) Unmarshal(data []byte) error {
	if len(data) != WithdrawRequestSize {
		return errors.Errorf("invalid withdraw request size: %d", len(data))
	}

	var offset int
	return binary.GetUint64(data[offset:], &obj.Amount, &offset)
}
