package account

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

type Record struct {
	Id uint64

	Address    string
	Owner      string
	Lamports   uint64
	Data       []byte
	Executable bool

	Version       uint64
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if err := validateKey("address", r.Address); err != nil {
		return err
	}

	if err := validateKey("owner", r.Owner); err != nil {
		return err
	}

	// Lamports are persisted as signed 64 bit integers
	if r.Lamports > math.MaxInt64 {
		return errors.Errorf("lamports exceed maximum storable value: %d", r.Lamports)
	}

	return nil
}

func validateKey(name, value string) error {
	if len(value) == 0 {
		return errors.Errorf("%s is required", name)
	}

	decoded, err := base58.Decode(value)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", name)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return errors.Errorf("invalid %s length: %d", name, len(decoded))
	}
	return nil
}

// IsEmpty reports whether the record holds no lamports and no data, which the
// runtime treats the same as a missing account.
func (r *Record) IsEmpty() bool {
	return r.Lamports == 0 && len(r.Data) == 0
}

// Equivalent reports whether two records describe the same account state,
// ignoring store-managed fields.
func (r *Record) Equivalent(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		bytes.Equal(r.Data, other.Data) &&
		r.Executable == other.Executable
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id: r.Id,

		Address:    r.Address,
		Owner:      r.Owner,
		Lamports:   r.Lamports,
		Data:       data,
		Executable: r.Executable,

		Version:       r.Version,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	cloned := r.Clone()

	dst.Id = cloned.Id

	dst.Address = cloned.Address
	dst.Owner = cloned.Owner
	dst.Lamports = cloned.Lamports
	dst.Data = cloned.Data
	dst.Executable = cloned.Executable

	dst.Version = cloned.Version
	dst.LastUpdatedAt = cloned.LastUpdatedAt
}

func (r *Record) String() string {
	return fmt.Sprintf(
		"Record{address=%s,owner=%s,lamports=%d,data_len=%d,version=%d}",
		r.Address,
		r.Owner,
		r.Lamports,
		len(r.Data),
		r.Version,
	)
}

// ValidateBatch checks every record in a SaveAll call, including that no
// address appears twice.
func ValidateBatch(records []*Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}

		if _, ok := seen[record.Address]; ok {
			return errors.Errorf("duplicate address in batch: %s", record.Address)
		}
		seen[record.Address] = struct{}{}
	}
	return nil
}
