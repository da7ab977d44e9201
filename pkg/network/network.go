// Package network defines the per-network constants used when serializing
// extended keys.
package network

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// Profile is an immutable set of per-network constants.
//
// Only the two version words affect extended-key serialization. The
// remaining fields are carried for callers that format addresses.
//
// ID is the registry key accepted by ByName ("mainnet", "testnet", ...).
// Name is the chain's own display name and may differ ("bitcoin").
type Profile struct {
	ID               string
	Name             string
	Bech32HRP        string
	PrivateVersion   uint32 // xprv/tprv
	PublicVersion    uint32 // xpub/tpub
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	WIFPrefix        byte
}

// MainNet returns the Bitcoin main network profile.
func MainNet() Profile {
	return Profile{
		ID:               "mainnet",
		Name:             "bitcoin",
		Bech32HRP:        "bc",
		PrivateVersion:   0x0488ade4,
		PublicVersion:    0x0488b21e,
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		WIFPrefix:        0x80,
	}
}

// TestNet returns the Bitcoin test network profile.
func TestNet() Profile {
	return Profile{
		ID:               "testnet",
		Name:             "testnet",
		Bech32HRP:        "tb",
		PrivateVersion:   0x04358394,
		PublicVersion:    0x043587cf,
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		WIFPrefix:        0xef,
	}
}

// FromChainParams builds a profile from btcd chain parameters.
func FromChainParams(p *chaincfg.Params) Profile {
	return Profile{
		ID:               p.Name,
		Name:             p.Name,
		Bech32HRP:        p.Bech32HRPSegwit,
		PrivateVersion:   binary.BigEndian.Uint32(p.HDPrivateKeyID[:]),
		PublicVersion:    binary.BigEndian.Uint32(p.HDPublicKeyID[:]),
		PubKeyHashAddrID: p.PubKeyHashAddrID,
		ScriptHashAddrID: p.ScriptHashAddrID,
		WIFPrefix:        p.PrivateKeyID,
	}
}

// Version returns the version word for a private or public serialization.
func (p Profile) Version(public bool) uint32 {
	if public {
		return p.PublicVersion
	}
	return p.PrivateVersion
}

// Key returns the identifier reported in responses and stored records.
// Profiles built outside the registry fall back to Name.
func (p Profile) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

func registry() map[string]Profile {
	reg := map[string]Profile{
		"mainnet": MainNet(),
		"testnet": TestNet(),
		"regtest": FromChainParams(&chaincfg.RegressionNetParams),
		"simnet":  FromChainParams(&chaincfg.SimNetParams),
		"signet":  FromChainParams(&chaincfg.SigNetParams),
	}
	for id, p := range reg {
		p.ID = id
		reg[id] = p
	}
	return reg
}

var aliases = map[string]string{
	"bitcoin":  "mainnet",
	"main":     "mainnet",
	"testnet3": "testnet",
	"test":     "testnet",
}

// ByName looks up a known profile. Matching is case-insensitive.
func ByName(name string) (Profile, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	p, ok := registry()[name]
	return p, ok
}

// Names returns the canonical names accepted by ByName, sorted.
func Names() []string {
	reg := registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByVersion finds the profile that owns an extended-key version word.
// The second result reports whether the version is a public one.
// Networks sharing version words (testnet, regtest, signet) resolve to testnet.
func ByVersion(version uint32) (p Profile, public bool, ok bool) {
	for _, name := range []string{"mainnet", "testnet", "simnet"} {
		candidate, _ := ByName(name)
		switch version {
		case candidate.PrivateVersion:
			return candidate, false, true
		case candidate.PublicVersion:
			return candidate, true, true
		}
	}
	return Profile{}, false, false
}
