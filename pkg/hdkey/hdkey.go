// Package hdkey implements BIP32 hierarchical deterministic keys: master key
// generation from a seed, in-place child derivation along textual paths, and
// extended-key (xprv/xpub) serialization.
//
// An HDKey is mutated in place by Derive and DerivePath and is not safe for
// concurrent use. Clone a node before branching into independent paths, and
// call Zero when a node is no longer needed.
package hdkey

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

const (
	// HardenedOffset is added to an index to request hardened derivation.
	HardenedOffset uint32 = 0x80000000

	// MaxDepth is the deepest level a node can sit at.
	MaxDepth = 255

	// Seed length bounds accepted by NewRootKey.
	MinSeedSize = 16
	MaxSeedSize = 64
)

var (
	ErrSeedSize             = errors.New("seed length out of range")
	ErrInvalidMasterKey     = errors.New("seed produced an invalid master key")
	ErrDeriveHardFromPublic = errors.New("cannot derive a hardened child from a public key")
	ErrMaxDepth             = errors.New("maximum derivation depth reached")
	ErrIndexExhausted       = errors.New("no valid child index left")
	ErrNoPrivateKey         = errors.New("key has no private part")
	ErrEmptyKey             = errors.New("key is empty")
)

// HDKey is a node in a BIP32 key tree.
type HDKey struct {
	curve crypto.Curve
	net   network.Profile

	privateKey [crypto.PrivateKeySize]byte
	publicKey  [crypto.PublicKeySize]byte
	chainCode  [32]byte
	private    bool

	depth    uint8
	index    uint32
	parentFP uint32

	// Populated by MakeExtendedKey and ParseExtendedKey.
	extPrivate []byte
	extPublic  []byte
}

// MakeBip39Seed derives the 64-byte seed for a mnemonic phrase.
func MakeBip39Seed(phrase, passphrase string) *mnemonic.Seed {
	return mnemonic.WordsToSeed(phrase, passphrase)
}

// MakeBip39SeedFromWords is MakeBip39Seed for a pre-split phrase.
func MakeBip39SeedFromWords(words []string, passphrase string) *mnemonic.Seed {
	return mnemonic.WordListToSeed(words, passphrase)
}

// NewRootKey creates a master node on secp256k1.
func NewRootKey(seed []byte, net network.Profile) (*HDKey, error) {
	return NewRootKeyWithCurve(seed, net, crypto.Secp256k1())
}

// NewRootKeyFromMnemonic stretches a phrase into a seed and creates the
// master node from it. The phrase is not validated.
func NewRootKeyFromMnemonic(phrase, passphrase string, net network.Profile) (*HDKey, error) {
	seed := MakeBip39Seed(phrase, passphrase)
	defer seed.Zero()
	return NewRootKey(seed.Bytes(), net)
}

// NewRootKeyWithCurve creates a master node: I = HMAC-SHA512(curve seed key,
// seed), private key = IL, chain code = IR.
func NewRootKeyWithCurve(seed []byte, net network.Profile, curve crypto.Curve) (*HDKey, error) {
	if len(seed) < MinSeedSize || len(seed) > MaxSeedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSeedSize, len(seed))
	}

	sum := crypto.HMACSHA512(curve.SeedKey(), seed)
	defer crypto.Zero64(&sum)

	k := &HDKey{curve: curve, net: net, private: true}
	copy(k.privateKey[:], sum[:32])
	copy(k.chainCode[:], sum[32:])

	if !curve.ValidPrivateKey(&k.privateKey) {
		k.Zero()
		return nil, ErrInvalidMasterKey
	}
	pub, err := curve.PublicKey(&k.privateKey)
	if err != nil {
		k.Zero()
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKey, err)
	}
	k.publicKey = pub
	return k, nil
}

// Clone returns a fully independent copy of the node.
func (k *HDKey) Clone() *HDKey {
	c := *k
	c.extPrivate = append([]byte(nil), k.extPrivate...)
	c.extPublic = append([]byte(nil), k.extPublic...)
	return &c
}

// Zero wipes every buffer of the node. The node is unusable afterwards.
func (k *HDKey) Zero() {
	crypto.Zero32(&k.privateKey)
	crypto.Zero32(&k.chainCode)
	crypto.Zero(k.publicKey[:])
	k.clearExtended()
	k.private = false
	k.depth, k.index, k.parentFP = 0, 0, 0
}

func (k *HDKey) clearExtended() {
	crypto.Zero(k.extPrivate)
	k.extPrivate = nil
	k.extPublic = nil
}

// Neuter returns a public-only copy of the node.
func (k *HDKey) Neuter() *HDKey {
	c := k.Clone()
	c.dropPrivate()
	return c
}

// dropPrivate turns the node into a public-only node in place.
func (k *HDKey) dropPrivate() {
	crypto.Zero32(&k.privateKey)
	crypto.Zero(k.extPrivate)
	k.extPrivate = nil
	k.private = false
}

// IsPrivate reports whether the node holds a private key.
func (k *HDKey) IsPrivate() bool { return k.private }

// Network returns the node's network profile.
func (k *HDKey) Network() network.Profile { return k.net }

// Curve returns the node's curve.
func (k *HDKey) Curve() crypto.Curve { return k.curve }

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 { return k.depth }

// Index returns the child index the node was derived at, hardened bit included.
func (k *HDKey) Index() uint32 { return k.index }

// ParentFingerprint returns the fingerprint of the parent (0 for master).
func (k *HDKey) ParentFingerprint() uint32 { return k.parentFP }

// PrivateKey returns a copy of the 32-byte private key, or nil for
// public-only nodes.
func (k *HDKey) PrivateKey() []byte {
	if !k.private {
		return nil
	}
	return append([]byte(nil), k.privateKey[:]...)
}

// PublicKey returns a copy of the compressed public key.
func (k *HDKey) PublicKey() []byte {
	return append([]byte(nil), k.publicKey[:]...)
}

// ChainCode returns a copy of the chain code.
func (k *HDKey) ChainCode() []byte {
	return append([]byte(nil), k.chainCode[:]...)
}

// Fingerprint returns the first four bytes of Hash160(public key).
func (k *HDKey) Fingerprint() uint32 {
	h := crypto.Hash160(k.publicKey[:])
	return binary.BigEndian.Uint32(h[:4])
}

// ExtendedPrivateKey returns the xprv string set by MakeExtendedKey or
// ParseExtendedKey, or "" when none is stored.
func (k *HDKey) ExtendedPrivateKey() string { return string(k.extPrivate) }

// ExtendedPublicKey returns the xpub string set by MakeExtendedKey or
// ParseExtendedKey, or "" when none is stored.
func (k *HDKey) ExtendedPublicKey() string { return string(k.extPublic) }

// Signer returns a Schnorr signer over the node's private key.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	if !k.private {
		return nil, ErrNoPrivateKey
	}
	return crypto.PrivateKeyFromBytes(k.privateKey[:])
}

func (k *HDKey) empty() bool {
	return k.curve == nil || k.publicKey == [crypto.PublicKeySize]byte{}
}
