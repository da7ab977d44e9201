package hdkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
)

// invalidChild reports whether err means "IL or the child key is unusable",
// in which case BIP32 moves on to the next index.
func invalidChild(err error) bool {
	return errors.Is(err, crypto.ErrScalarOutOfRange) ||
		errors.Is(err, crypto.ErrZeroScalar) ||
		errors.Is(err, crypto.ErrPointAtInfinity)
}

// Derive replaces the node with its child at index. Indices at or above
// HardenedOffset request hardened derivation, which needs a private key.
//
// If index yields an invalid child, the next index is tried and the index
// that succeeded is recorded on the node. On error the node is unchanged.
func (k *HDKey) Derive(index uint32) error {
	if k.empty() {
		return ErrEmptyKey
	}
	if k.depth == MaxDepth {
		return ErrMaxDepth
	}

	parentFP := k.Fingerprint()
	for i := index; ; i++ {
		err := k.deriveAt(i, parentFP)
		if err == nil {
			if i != index {
				log.HDKey.Warn().
					Uint32("requested", index).
					Uint32("used", i).
					Msg("Invalid child key, skipped to next index")
			}
			return nil
		}
		if !invalidChild(err) {
			return err
		}
		log.HDKey.Debug().Uint32("index", i).Err(err).Msg("Child index yields invalid key")
		if i == math.MaxUint32 {
			return ErrIndexExhausted
		}
	}
}

// deriveAt attempts CKD at exactly index i and commits on success.
func (k *HDKey) deriveAt(i uint32, parentFP uint32) error {
	hardened := i >= HardenedOffset
	if hardened && !k.private {
		return ErrDeriveHardFromPublic
	}

	// Both layouts are 37 bytes: 0x00||k||i (hardened) or K||i (normal).
	var data [crypto.PublicKeySize + 4]byte
	defer crypto.Zero(data[:])
	if hardened {
		copy(data[1:], k.privateKey[:])
	} else {
		copy(data[:], k.publicKey[:])
	}
	binary.BigEndian.PutUint32(data[crypto.PublicKeySize:], i)

	sum := crypto.HMACSHA512(k.chainCode[:], data[:])
	defer crypto.Zero64(&sum)
	var il [32]byte
	defer crypto.Zero32(&il)
	copy(il[:], sum[:32])

	var (
		childPriv [crypto.PrivateKeySize]byte
		childPub  [crypto.PublicKeySize]byte
		err       error
	)
	defer crypto.Zero32(&childPriv)

	if k.private {
		childPriv, err = k.curve.AddPrivate(&k.privateKey, &il)
		if err != nil {
			return err
		}
		childPub, err = k.curve.PublicKey(&childPriv)
		if err != nil {
			return err
		}
	} else {
		childPub, err = k.curve.AddPublic(&k.publicKey, &il)
		if err != nil {
			return err
		}
	}

	k.privateKey = childPriv
	k.publicKey = childPub
	copy(k.chainCode[:], sum[32:])
	k.depth++
	k.index = i
	k.parentFP = parentFP
	k.clearExtended()
	return nil
}

// DerivePath derives along path in place. When wantPrivate is false the
// private key is wiped after the last step, leaving a public-only node.
// The path is applied atomically: on error the node is unchanged.
func (k *HDKey) DerivePath(path string, wantPrivate bool) error {
	if wantPrivate && !k.private {
		return ErrNoPrivateKey
	}
	indices, err := ParsePath(path)
	if err != nil {
		return err
	}
	return k.deriveIndices(indices, wantPrivate)
}

func (k *HDKey) deriveIndices(indices []uint32, wantPrivate bool) error {
	work := k.Clone()
	defer work.Zero()
	for _, idx := range indices {
		if err := work.Derive(idx); err != nil {
			return fmt.Errorf("derive %s: %w", formatIndex(idx), err)
		}
	}
	if !wantPrivate {
		work.dropPrivate()
	}
	k.swap(work)
	return nil
}

// swap moves other's state into k, leaving k's old state in other.
func (k *HDKey) swap(other *HDKey) {
	*k, *other = *other, *k
}
