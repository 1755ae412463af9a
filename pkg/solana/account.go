package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math/bits"

	"github.com/mr-tron/base58"
)

// AccountInfo is the view of an account handed to a program while it
// processes an instruction. Lamports and Data are mutable; every other field is
// fixed for the duration of the instruction.
//
// Accounts referenced more than once by an instruction share the same
// *AccountInfo.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// IsOwnedBy reports whether the account is owned by program.
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// Clone returns a deep copy of the account.
func (a *AccountInfo) Clone() *AccountInfo {
	return &AccountInfo{
		Key:        cloneBytes(a.Key),
		Owner:      cloneBytes(a.Owner),
		Lamports:   a.Lamports,
		Data:       cloneBytes(a.Data),
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
		Executable: a.Executable,
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cloned := make([]byte, len(b))
	copy(cloned, b)
	return cloned
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"AccountInfo{Key=%s,Owner=%s,Lamports=%d,DataLen=%d,IsSigner=%v,IsWritable=%v}",
		base58.Encode(a.Key),
		base58.Encode(a.Owner),
		a.Lamports,
		len(a.Data),
		a.IsSigner,
		a.IsWritable,
	)
}

// CheckedAdd returns a+b, or false if the sum overflows.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// CheckedSub returns a-b, or false if the difference underflows.
func CheckedSub(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}
