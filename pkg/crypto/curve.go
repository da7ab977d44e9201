package crypto

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Sizes of serialized curve values.
const (
	PrivateKeySize = 32
	PublicKeySize  = 33
)

// Curve errors. All of them mean "this scalar or point is unusable" and
// derivation code treats them as a reason to skip to the next index.
var (
	ErrScalarOutOfRange = errors.New("scalar is not below the curve order")
	ErrZeroScalar       = errors.New("scalar is zero")
	ErrPointAtInfinity  = errors.New("point at infinity")
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// Curve is the elliptic-curve capability required by HD derivation.
type Curve interface {
	// Name identifies the curve ("secp256k1").
	Name() string
	// SeedKey is the HMAC key used to derive the master node from a seed.
	SeedKey() []byte
	// ValidPrivateKey reports whether 0 < k < n.
	ValidPrivateKey(k *[PrivateKeySize]byte) bool
	// PublicKey returns the compressed point k*G.
	PublicKey(k *[PrivateKeySize]byte) ([PublicKeySize]byte, error)
	// AddPrivate returns (tweak + k) mod n.
	AddPrivate(k, tweak *[PrivateKeySize]byte) ([PrivateKeySize]byte, error)
	// AddPublic returns the compressed point P + tweak*G.
	AddPublic(pub *[PublicKeySize]byte, tweak *[PrivateKeySize]byte) ([PublicKeySize]byte, error)
}

var bitcoinSeed = []byte("Bitcoin seed")

type secp256k1Curve struct{}

// Secp256k1 returns the secp256k1 curve capability.
func Secp256k1() Curve {
	return secp256k1Curve{}
}

func (secp256k1Curve) Name() string { return "secp256k1" }

func (secp256k1Curve) SeedKey() []byte {
	return append([]byte(nil), bitcoinSeed...)
}

func (secp256k1Curve) ValidPrivateKey(k *[PrivateKeySize]byte) bool {
	var s secp256k1.ModNScalar
	defer s.Zero()
	overflow := s.SetBytes(k)
	return overflow == 0 && !s.IsZero()
}

func (c secp256k1Curve) PublicKey(k *[PrivateKeySize]byte) ([PublicKeySize]byte, error) {
	var out [PublicKeySize]byte
	var s secp256k1.ModNScalar
	defer s.Zero()
	if s.SetBytes(k) != 0 {
		return out, ErrScalarOutOfRange
	}
	if s.IsZero() {
		return out, ErrZeroScalar
	}
	var p secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s, &p)
	p.ToAffine()
	copy(out[:], secp256k1.NewPublicKey(&p.X, &p.Y).SerializeCompressed())
	return out, nil
}

func (secp256k1Curve) AddPrivate(k, tweak *[PrivateKeySize]byte) ([PrivateKeySize]byte, error) {
	var out [PrivateKeySize]byte
	var t, s secp256k1.ModNScalar
	defer t.Zero()
	defer s.Zero()
	if t.SetBytes(tweak) != 0 {
		return out, ErrScalarOutOfRange
	}
	if s.SetBytes(k) != 0 {
		return out, ErrScalarOutOfRange
	}
	s.Add(&t)
	if s.IsZero() {
		return out, ErrZeroScalar
	}
	s.PutBytes(&out)
	return out, nil
}

func (secp256k1Curve) AddPublic(pub *[PublicKeySize]byte, tweak *[PrivateKeySize]byte) ([PublicKeySize]byte, error) {
	var out [PublicKeySize]byte
	parent, err := secp256k1.ParsePubKey(pub[:])
	if err != nil {
		return out, ErrInvalidPublicKey
	}
	var t secp256k1.ModNScalar
	defer t.Zero()
	if t.SetBytes(tweak) != 0 {
		return out, ErrScalarOutOfRange
	}

	var p, tg, sum secp256k1.JacobianPoint
	parent.AsJacobian(&p)
	secp256k1.ScalarBaseMultNonConst(&t, &tg)
	secp256k1.AddNonConst(&p, &tg, &sum)
	if (sum.X.IsZero() && sum.Y.IsZero()) || sum.Z.IsZero() {
		return out, ErrPointAtInfinity
	}
	sum.ToAffine()
	copy(out[:], secp256k1.NewPublicKey(&sum.X, &sum.Y).SerializeCompressed())
	return out, nil
}

// ValidPublicKey reports whether pub is a valid compressed point on secp256k1.
func ValidPublicKey(pub []byte) bool {
	if len(pub) != PublicKeySize {
		return false
	}
	_, err := secp256k1.ParsePubKey(pub)
	return err == nil
}
