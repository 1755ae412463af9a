package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/code-payments/crowdfund/pkg/solana"
)

// NewAccountInfo returns a writable, non-signing account with a random key and
// a zeroed data region of dataLen bytes.
func NewAccountInfo(t *testing.T, owner ed25519.PublicKey, lamports uint64, dataLen int) *solana.AccountInfo {
	return &solana.AccountInfo{
		Key:        GenerateSolanaKeys(t, 1)[0],
		Owner:      owner,
		Lamports:   lamports,
		Data:       make([]byte, dataLen),
		IsWritable: true,
	}
}

// NewSignerAccountInfo returns a writable, signing account with no data.
func NewSignerAccountInfo(t *testing.T, owner ed25519.PublicKey, lamports uint64) *solana.AccountInfo {
	info := NewAccountInfo(t, owner, lamports, 0)
	info.IsSigner = true
	return info
}
