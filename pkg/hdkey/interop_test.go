package hdkey

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip32"

	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

// A 64-byte all-zero seed on mainnet, pinned against two independent
// BIP32 implementations.
func TestInterop_ZeroSeedRoot(t *testing.T) {
	seed := make([]byte, 64)

	root, err := NewRootKey(seed, network.MainNet())
	require.NoError(t, err)
	require.NoError(t, MakeExtendedKey(root, "m"))

	ref, err := bip32.NewMasterKey(seed)
	require.NoError(t, err)
	require.Equal(t, ref.B58Serialize(), root.ExtendedPrivateKey())
	require.Equal(t, ref.PublicKey().B58Serialize(), root.ExtendedPublicKey())
	require.Equal(t, ref.ChainCode, root.ChainCode())
	require.Equal(t, ref.PublicKey().Key, root.PublicKey())

	chain, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)
	require.Equal(t, chain.String(), root.ExtendedPrivateKey())
}

func TestInterop_GoBip32Paths(t *testing.T) {
	seed := bytes.Repeat([]byte{0x5c}, 64)
	paths := [][]uint32{
		{0},
		{HardenedOffset},
		{HardenedOffset + 44, HardenedOffset, HardenedOffset, 0, 7},
		{1, 2, 3, HardenedOffset + 4},
	}

	for _, indices := range paths {
		ref, err := bip32.NewMasterKey(seed)
		require.NoError(t, err)
		for _, idx := range indices {
			ref, err = ref.NewChildKey(idx)
			require.NoError(t, err)
		}

		root, err := NewRootKey(seed, network.MainNet())
		require.NoError(t, err)
		k, err := root.Extend(Derivation(FormatPath(indices)))
		require.NoError(t, err)

		require.Equal(t, ref.B58Serialize(), k.ExtendedPrivateKey(), FormatPath(indices))
		require.Equal(t, ref.PublicKey().B58Serialize(), k.ExtendedPublicKey(), FormatPath(indices))
	}
}

func TestInterop_HDKeychainTestNet(t *testing.T) {
	seed := bytes.Repeat([]byte{0xa1}, 32)

	ref, err := hdkeychain.NewMaster(seed, &chaincfg.TestNet3Params)
	require.NoError(t, err)
	for _, idx := range []uint32{HardenedOffset + 84, HardenedOffset + 1, HardenedOffset, 1, 3} {
		ref, err = ref.Derive(idx)
		require.NoError(t, err)
	}
	refPub, err := ref.Neuter()
	require.NoError(t, err)

	profile := network.FromChainParams(&chaincfg.TestNet3Params)
	root, err := NewRootKey(seed, profile)
	require.NoError(t, err)
	k, err := root.Extend("m/84'/1'/0'/1/3")
	require.NoError(t, err)

	require.Equal(t, ref.String(), k.ExtendedPrivateKey())
	require.Equal(t, refPub.String(), k.ExtendedPublicKey())

	parsed, err := ParseExtendedKey(refPub.String(), profile)
	require.NoError(t, err)
	require.Equal(t, k.PublicKey(), parsed.PublicKey())
	require.Equal(t, k.ParentFingerprint(), parsed.ParentFingerprint())
}
