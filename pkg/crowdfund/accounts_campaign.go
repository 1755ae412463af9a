package crowdfund

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/crowdfund/pkg/solana/binary"
)

const minCampaignAccountSize = (32 + // admin
	4 + // name
	4 + // description
	4 + // image_link
	8) // amount_donated

var (
	errTrailingBytes = errors.New("unexpected trailing bytes")
	errDataTooSmall  = errors.New("data too small for campaign")
)

// CampaignAccount is the record stored in a campaign account's data region.
// The same encoding is used as the payload of the create instruction.
type CampaignAccount struct {
	Admin         ed25519.PublicKey
	Name          string
	Description   string
	ImageLink     string
	AmountDonated uint64
}

// Size is the encoded size of the campaign in bytes.
func (obj *CampaignAccount) Size() int {
	return 32 +
		binary.StringSize(obj.Name) +
		binary.StringSize(obj.Description) +
		binary.StringSize(obj.ImageLink) +
		8
}

func (obj *CampaignAccount) Clone() *CampaignAccount {
	cloned := *obj
	if obj.Admin != nil {
		cloned.Admin = make(ed25519.PublicKey, len(obj.Admin))
		copy(cloned.Admin, obj.Admin)
	}
	return &cloned
}

func (obj *CampaignAccount) Marshal() []byte {
	data := make([]byte, obj.Size())
	obj.marshalTo(data)
	return data
}

// MarshalInto writes the campaign to the front of dst and zeroes the rest of
// it.
func (obj *CampaignAccount) MarshalInto(dst []byte) error {
	if len(dst) < obj.Size() {
		return errDataTooSmall
	}

	offset := obj.marshalTo(dst)
	for i := offset; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

func (obj *CampaignAccount) marshalTo(dst []byte) int {
	var offset int
	var admin [ed25519.PublicKeySize]byte
	copy(admin[:], obj.Admin)

	binary.PutKey32(dst[offset:], admin[:], &offset)
	binary.PutString(dst[offset:], obj.Name, &offset)
	binary.PutString(dst[offset:], obj.Description, &offset)
	binary.PutString(dst[offset:], obj.ImageLink, &offset)
	binary.PutUint64(dst[offset:], obj.AmountDonated, &offset)

	return offset
}

// Unmarshal decodes data that must hold exactly one campaign.
func (obj *CampaignAccount) Unmarshal(data []byte) error {
	var decoded CampaignAccount
	offset, err := decoded.unmarshalPrefix(data)
	if err != nil {
		return err
	}
	if offset != len(data) {
		return errTrailingBytes
	}

	*obj = decoded
	return nil
}

// UnmarshalAccountData decodes the campaign at the front of an account's data
// region. Bytes after the campaign are ignored.
func (obj *CampaignAccount) UnmarshalAccountData(data []byte) error {
	_, err := obj.unmarshalPrefix(data)
	return err
}

func (obj *CampaignAccount) unmarshalPrefix(data []byte) (int, error) {
	if len(data) < minCampaignAccountSize {
		return 0, binary.ErrUnexpectedEOF
	}

	var decoded CampaignAccount
	var offset int

	if err := binary.GetKey32(data[offset:], &decoded.Admin, &offset); err != nil {
		return 0, errors.Wrap(err, "admin")
	}
	if err := binary.GetString(data[offset:], &decoded.Name, &offset); err != nil {
		return 0, errors.Wrap(err, "name")
	}
	if err := binary.GetString(data[offset:], &decoded.Description, &offset); err != nil {
		return 0, errors.Wrap(err, "description")
	}
	if err := binary.GetString(data[offset:], &decoded.ImageLink, &offset); err != nil {
		return 0, errors.Wrap(err, "image_link")
	}
	if err := binary.GetUint64(data[offset:], &decoded.AmountDonated, &offset); err != nil {
		return 0, errors.Wrap(err, "amount_donated")
	}

	*obj = decoded
	return offset, nil
}

// IsInitialized reports whether the campaign has been through create. An
// all-zero admin marks an account that has never held a campaign.
func (obj *CampaignAccount) IsInitialized() bool {
	for _, b := range obj.Admin {
		if b != 0 {
			return true
		}
	}
	return false
}

func (obj *CampaignAccount) String() string {
	return fmt.Sprintf(
		"CampaignAccount{admin=%s,name=%q,description=%q,image_link=%q,amount_donated=%d}",
		base58.Encode(obj.Admin),
		obj.Name,
		obj.Description,
		obj.ImageLink,
		obj.AmountDonated,
	)
}
