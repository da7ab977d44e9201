package crypto

import (
	"crypto/subtle"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// ChecksumSize is the length of the Base58Check checksum.
const ChecksumSize = 4

// Base58Check errors.
var (
	ErrInvalidBase58 = errors.New("invalid base58 string")
	ErrChecksum      = errors.New("base58 checksum mismatch")
)

// Base58CheckEncode appends the first four bytes of DoubleSHA256(payload)
// and encodes the result in Base58.
func Base58CheckEncode(payload []byte) string {
	sum := DoubleSHA256(payload)
	buf := make([]byte, 0, len(payload)+ChecksumSize)
	buf = append(buf, payload...)
	buf = append(buf, sum[:ChecksumSize]...)
	s := base58.Encode(buf)
	Zero(buf)
	return s
}

// Base58CheckDecode decodes s and verifies its trailing checksum.
// The returned payload excludes the checksum.
func Base58CheckDecode(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrInvalidBase58
	}
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return nil, ErrInvalidBase58
	}
	if len(raw) < ChecksumSize {
		return nil, ErrChecksum
	}
	payload := raw[:len(raw)-ChecksumSize]
	sum := DoubleSHA256(payload)
	if subtle.ConstantTimeCompare(sum[:ChecksumSize], raw[len(payload):]) != 1 {
		Zero(raw)
		return nil, ErrChecksum
	}
	return payload, nil
}
