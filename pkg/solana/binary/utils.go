package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	ErrInvalidString = errors.New("string is not valid utf-8")
)

// StringSize is the encoded size of s: a u32 length prefix followed by the
// raw bytes.
func StringSize(s string) int {
	return 4 + len(s)
}

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutString(dst []byte, v string, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(v)))
	copy(dst[4:], v)
	*offset += StringSize(v)
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) error {
	if len(src) < ed25519.PublicKeySize {
		return ErrUnexpectedEOF
	}
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
	return nil
}

func GetUint64(src []byte, dst *uint64, offset *int) error {
	if len(src) < 8 {
		return ErrUnexpectedEOF
	}
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
	return nil
}

func GetUint32(src []byte, dst *uint32, offset *int) error {
	if len(src) < 4 {
		return ErrUnexpectedEOF
	}
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
	return nil
}

func GetUint8(src []byte, dst *uint8, offset *int) error {
	if len(src) < 1 {
		return ErrUnexpectedEOF
	}
	*dst = src[0]
	*offset += 1
	return nil
}

// GetString reads a u32 length-prefixed UTF-8 string. The length prefix is
// checked against the remaining input before anything is allocated.
func GetString(src []byte, dst *string, offset *int) error {
	var length uint32
	var consumed int
	if err := GetUint32(src, &length, &consumed); err != nil {
		return err
	}

	if uint64(length) > uint64(len(src)-consumed) || uint64(length) > math.MaxInt32 {
		return ErrUnexpectedEOF
	}

	raw := src[consumed : consumed+int(length)]
	if !utf8.Valid(raw) {
		return ErrInvalidString
	}

	*dst = string(raw)
	*offset += consumed + int(length)
	return nil
}
