// Package crypto provides the hash, MAC, curve and encoding primitives used
// by the HD key and mnemonic engines.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // hash160 is defined over RIPEMD-160.
)

// Digest is a 32-byte hash output.
type Digest [32]byte

// Hash computes a BLAKE3-256 hash of the input data.
// Used for identifiers that never leave this codebase (wallet IDs).
func Hash(data []byte) Digest {
	return blake3.Sum256(data)
}

// SHA256 computes a single SHA-256 hash.
func SHA256(data []byte) Digest {
	return sha256.Sum256(data)
}

// DoubleSHA256 computes SHA256(SHA256(data)).
func DoubleSHA256(data []byte) Digest {
	return Digest(chainhash.DoubleHashH(data))
}

// Hash160 computes RIPEMD160(SHA256(data)).
func Hash160(data []byte) [20]byte {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMACSHA512 computes HMAC-SHA512(key, data).
// The caller owns the result and should Zero it when it holds key material.
func HMACSHA512(key, data []byte) [64]byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	var out [64]byte
	mac.Sum(out[:0])
	return out
}
