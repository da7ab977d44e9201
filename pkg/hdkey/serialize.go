package hdkey

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

// ExtendedKeySize is the length of a serialized extended key before the
// Base58Check checksum.
const ExtendedKeySize = 78

var (
	ErrExtendedKeyLength  = errors.New("extended key has wrong length")
	ErrUnknownVersion     = errors.New("unknown extended key version")
	ErrInvalidKeyData     = errors.New("extended key carries an invalid key")
	ErrInvalidMasterState = errors.New("master extended key with non-zero parent or index")
)

// Serialize encodes key as a Base58Check extended key:
//
//	version(4) || depth(1) || fingerprint(4) || index(4) || chain code(32) || key(33)
//
// The key field is the compressed public key when public is true, and
// 0x00 || private key otherwise. All integers are big-endian.
func Serialize(key *HDKey, fingerprint, version uint32, public bool) (string, error) {
	if key.empty() {
		return "", ErrEmptyKey
	}
	if !public && !key.private {
		return "", ErrNoPrivateKey
	}

	var buf [ExtendedKeySize]byte
	defer crypto.Zero(buf[:])

	binary.BigEndian.PutUint32(buf[0:4], version)
	buf[4] = key.depth
	binary.BigEndian.PutUint32(buf[5:9], fingerprint)
	binary.BigEndian.PutUint32(buf[9:13], key.index)
	copy(buf[13:45], key.chainCode[:])
	if public {
		copy(buf[45:], key.publicKey[:])
	} else {
		copy(buf[46:], key.privateKey[:])
	}
	return crypto.Base58CheckEncode(buf[:]), nil
}

// MakeExtendedKey derives key in place along d and stores both extended
// serializations on it. A public-only key yields only the public one.
func MakeExtendedKey(key *HDKey, d Derivation) error {
	if key.empty() {
		return ErrEmptyKey
	}
	if err := key.DerivePath(string(d), key.private); err != nil {
		return err
	}
	return key.fillExtended()
}

// Extend is the non-mutating form of MakeExtendedKey.
func (k *HDKey) Extend(d Derivation) (*HDKey, error) {
	c := k.Clone()
	if err := MakeExtendedKey(c, d); err != nil {
		c.Zero()
		return nil, err
	}
	return c, nil
}

func (k *HDKey) fillExtended() error {
	pub, err := Serialize(k, k.parentFP, k.net.Version(true), true)
	if err != nil {
		return err
	}
	k.clearExtended()
	k.extPublic = []byte(pub)
	if k.private {
		priv, err := Serialize(k, k.parentFP, k.net.Version(false), false)
		if err != nil {
			return err
		}
		k.extPrivate = []byte(priv)
	}
	return nil
}

// ParseExtendedKey decodes an xprv/xpub string. The version word is matched
// against nets, or against the built-in profiles when nets is empty.
func ParseExtendedKey(s string, nets ...network.Profile) (*HDKey, error) {
	payload, err := crypto.Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(payload)
	if len(payload) != ExtendedKeySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrExtendedKeyLength, len(payload))
	}

	version := binary.BigEndian.Uint32(payload[0:4])
	net, public, ok := lookupVersion(version, nets)
	if !ok {
		return nil, fmt.Errorf("%w: %08x", ErrUnknownVersion, version)
	}

	k := &HDKey{
		curve:    crypto.Secp256k1(),
		net:      net,
		depth:    payload[4],
		parentFP: binary.BigEndian.Uint32(payload[5:9]),
		index:    binary.BigEndian.Uint32(payload[9:13]),
	}
	if k.depth == 0 && (k.parentFP != 0 || k.index != 0) {
		return nil, ErrInvalidMasterState
	}
	copy(k.chainCode[:], payload[13:45])

	keyData := payload[45:]
	if public {
		if !crypto.ValidPublicKey(keyData) {
			k.Zero()
			return nil, ErrInvalidKeyData
		}
		copy(k.publicKey[:], keyData)
	} else {
		if keyData[0] != 0x00 {
			k.Zero()
			return nil, ErrInvalidKeyData
		}
		copy(k.privateKey[:], keyData[1:])
		pub, err := k.curve.PublicKey(&k.privateKey)
		if err != nil {
			k.Zero()
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyData, err)
		}
		k.publicKey = pub
		k.private = true
	}

	if err := k.fillExtended(); err != nil {
		k.Zero()
		return nil, err
	}
	return k, nil
}

func lookupVersion(version uint32, nets []network.Profile) (network.Profile, bool, bool) {
	if len(nets) == 0 {
		return network.ByVersion(version)
	}
	for _, n := range nets {
		switch version {
		case n.PrivateVersion:
			return n, false, true
		case n.PublicVersion:
			return n, true, true
		}
	}
	return network.Profile{}, false, false
}
