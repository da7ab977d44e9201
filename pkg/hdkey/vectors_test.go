package hdkey

import (
	"encoding/hex"
	"testing"

	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

type vectorStep struct {
	path string
	xpub string
	xprv string
}

// BIP32 test vectors 1-3.
var bip32Vectors = []struct {
	seed  string
	steps []vectorStep
}{
	{
		seed: "000102030405060708090a0b0c0d0e0f",
		steps: []vectorStep{
			{
				path: "m",
				xpub: "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8",
				xprv: "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi",
			},
			{
				path: "m/0'",
				xpub: "xpub68Gmy5EdvgibQVfPdqkBBCHxA5htiqg55crXYuXoQRKfDBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv5ski8PX9rL2dZXvgGDnw",
				xprv: "xprv9uHRZZhk6KAJC1avXpDAp4MDc3sQKNxDiPvvkX8Br5ngLNv1TxvUxt4cV1rGL5hj6KCesnDYUhd7oWgT11eZG7XnxHrnYeSvkzY7d2bhkJ7",
			},
			{
				path: "m/0'/1",
				xpub: "xpub6ASuArnXKPbfEwhqN6e3mwBcDTgzisQN1wXN9BJcM47sSikHjJf3UFHKkNAWbWMiGj7Wf5uMash7SyYq527Hqck2AxYysAA7xmALppuCkwQ",
				xprv: "xprv9wTYmMFdV23N2TdNG573QoEsfRrWKQgWeibmLntzniatZvR9BmLnvSxqu53Kw1UmYPxLgboyZQaXwTCg8MSY3H2EU4pWcQDnRnrVA1xe8fs",
			},
			{
				path: "m/0'/1/2'",
				xpub: "xpub6D4BDPcP2GT577Vvch3R8wDkScZWzQzMMUm3PWbmWvVJrZwQY4VUNgqFJPMM3No2dFDFGTsxxpG5uJh7n7epu4trkrX7x7DogT5Uv6fcLW5",
				xprv: "xprv9z4pot5VBttmtdRTWfWQmoH1taj2axGVzFqSb8C9xaxKymcFzXBDptWmT7FwuEzG3ryjH4ktypQSAewRiNMjANTtpgP4mLTj34bhnZX7UiM",
			},
			{
				path: "m/0'/1/2'/2",
				xpub: "xpub6FHa3pjLCk84BayeJxFW2SP4XRrFd1JYnxeLeU8EqN3vDfZmbqBqaGJAyiLjTAwm6ZLRQUMv1ZACTj37sR62cfN7fe5JnJ7dh8zL4fiyLHV",
				xprv: "xprvA2JDeKCSNNZky6uBCviVfJSKyQ1mDYahRjijr5idH2WwLsEd4Hsb2Tyh8RfQMuPh7f7RtyzTtdrbdqqsunu5Mm3wDvUAKRHSC34sJ7in334",
			},
			{
				path: "m/0'/1/2'/2/1000000000",
				xpub: "xpub6H1LXWLaKsWFhvm6RVpEL9P4KfRZSW7abD2ttkWP3SSQvnyA8FSVqNTEcYFgJS2UaFcxupHiYkro49S8yGasTvXEYBVPamhGW6cFJodrTHy",
				xprv: "xprvA41z7zogVVwxVSgdKUHDy1SKmdb533PjDz7J6N6mV6uS3ze1ai8FHa8kmHScGpWmj4WggLyQjgPie1rFSruoUihUZREPSL39UNdE3BBDu76",
			},
		},
	},
	{
		seed: "fffcf9f6f3f0edeae7e4e1dedbd8d5d2cfccc9c6c3c0bdbab7b4b1aeaba8a5a29f9c999693908d8a8784817e7b7875726f6c696663605d5a5754514e4b484542",
		steps: []vectorStep{
			{
				path: "m",
				xpub: "xpub661MyMwAqRbcFW31YEwpkMuc5THy2PSt5bDMsktWQcFF8syAmRUapSCGu8ED9W6oDMSgv6Zz8idoc4a6mr8BDzTJY47LJhkJ8UB7WEGuduB",
				xprv: "xprv9s21ZrQH143K31xYSDQpPDxsXRTUcvj2iNHm5NUtrGiGG5e2DtALGdso3pGz6ssrdK4PFmM8NSpSBHNqPqm55Qn3LqFtT2emdEXVYsCzC2U",
			},
			{
				path: "m/0",
				xpub: "xpub69H7F5d8KSRgmmdJg2KhpAK8SR3DjMwAdkxj3ZuxV27CprR9LgpeyGmXUbC6wb7ERfvrnKZjXoUmmDznezpbZb7ap6r1D3tgFxHmwMkQTPH",
				xprv: "xprv9vHkqa6EV4sPZHYqZznhT2NPtPCjKuDKGY38FBWLvgaDx45zo9WQRUT3dKYnjwih2yJD9mkrocEZXo1ex8G81dwSM1fwqWpWkeS3v86pgKt",
			},
			{
				path: "m/0/2147483647'",
				xpub: "xpub6ASAVgeehLbnwdqV6UKMHVzgqAG8Gr6riv3Fxxpj8ksbH9ebxaEyBLZ85ySDhKiLDBrQSARLq1uNRts8RuJiHjaDMBU4Zn9h8LZNnBC5y4a",
				xprv: "xprv9wSp6B7kry3Vj9m1zSnLvN3xH8RdsPP1Mh7fAaR7aRLcQMKTR2vidYEeEg2mUCTAwCd6vnxVrcjfy2kRgVsFawNzmjuHc2YmYRmagcEPdU9",
			},
			{
				path: "m/0/2147483647'/1",
				xpub: "xpub6DF8uhdarytz3FWdA8TvFSvvAh8dP3283MY7p2V4SeE2wyWmG5mg5EwVvmdMVCQcoNJxGoWaU9DCWh89LojfZ537wTfunKau47EL2dhHKon",
				xprv: "xprv9zFnWC6h2cLgpmSA46vutJzBcfJ8yaJGg8cX1e5StJh45BBciYTRXSd25UEPVuesF9yog62tGAQtHjXajPPdbRCHuWS6T8XA2ECKADdw4Ef",
			},
			{
				path: "m/0/2147483647'/1/2147483646'",
				xpub: "xpub6ERApfZwUNrhLCkDtcHTcxd75RbzS1ed54G1LkBUHQVHQKqhMkhgbmJbZRkrgZw4koxb5JaHWkY4ALHY2grBGRjaDMzQLcgJvLJuZZvRcEL",
				xprv: "xprvA1RpRA33e1JQ7ifknakTFpgNXPmW2YvmhqLQYMmrj4xJXXWYpDPS3xz7iAxn8L39njGVyuoseXzU6rcxFLJ8HFsTjSyQbLYnMpCqE2VbFWc",
			},
			{
				path: "m/0/2147483647'/1/2147483646'/2",
				xpub: "xpub6FnCn6nSzZAw5Tw7cgR9bi15UV96gLZhjDstkXXxvCLsUXBGXPdSnLFbdpq8p9HmGsApME5hQTZ3emM2rnY5agb9rXpVGyy3bdW6EEgAtqt",
				xprv: "xprvA2nrNbFZABcdryreWet9Ea4LvTJcGsqrMzxHx98MMrotbir7yrKCEXw7nadnHM8Dq38EGfSh6dqA9QWTyefMLEcBYJUuekgW4BYPJcr9E7j",
			},
		},
	},
	{
		seed: "4b381541583be4423346c643850da4b320e46a87ae3d2a4e6da11eba819cd4acba45d239319ac14f863b8d5ab5a0d0c64d2e8a1e7d1457df2e5a3c51c73235be",
		steps: []vectorStep{
			{
				path: "m",
				xpub: "xpub661MyMwAqRbcEZVB4dScxMAdx6d4nFc9nvyvH3v4gJL378CSRZiYmhRoP7mBy6gSPSCYk6SzXPTf3ND1cZAceL7SfJ1Z3GC8vBgp2epUt13",
				xprv: "xprv9s21ZrQH143K25QhxbucbDDuQ4naNntJRi4KUfWT7xo4EKsHt2QJDu7KXp1A3u7Bi1j8ph3EGsZ9Xvz9dGuVrtHHs7pXeTzjuxBrCmmhgC6",
			},
			{
				path: "m/0'",
				xpub: "xpub68NZiKmJWnxxS6aaHmn81bvJeTESw724CRDs6HbuccFQN9Ku14VQrADWgqbhhTHBaohPX4CjNLf9fq9MYo6oDaPPLPxSb7gwQN3ih19Zm4Y",
				xprv: "xprv9uPDJpEQgRQfDcW7BkF7eTya6RPxXeJCqCJGHuCJ4GiRVLzkTXBAJMu2qaMWPrS7AANYqdq6vcBcBUdJCVVFceUvJFjaPdGZ2y9WACViL4L",
			},
		},
	},
}

func TestBIP32Vectors(t *testing.T) {
	for i, v := range bip32Vectors {
		seed, err := hex.DecodeString(v.seed)
		if err != nil {
			t.Fatalf("bad seed hex: %v", err)
		}
		root, err := NewRootKey(seed, network.MainNet())
		if err != nil {
			t.Fatalf("vector %d: NewRootKey() error: %v", i+1, err)
		}

		for _, step := range v.steps {
			k, err := root.Extend(Derivation(step.path))
			if err != nil {
				t.Fatalf("vector %d %s: Extend() error: %v", i+1, step.path, err)
			}
			if got := k.ExtendedPrivateKey(); got != step.xprv {
				t.Errorf("vector %d %s: xprv = %s, want %s", i+1, step.path, got, step.xprv)
			}
			if got := k.ExtendedPublicKey(); got != step.xpub {
				t.Errorf("vector %d %s: xpub = %s, want %s", i+1, step.path, got, step.xpub)
			}
			k.Zero()
		}
	}
}

func TestBIP32Vectors_Parse(t *testing.T) {
	for _, v := range bip32Vectors {
		for _, step := range v.steps {
			priv, err := ParseExtendedKey(step.xprv)
			if err != nil {
				t.Fatalf("ParseExtendedKey(%s) error: %v", step.xprv, err)
			}
			if !priv.IsPrivate() {
				t.Errorf("%s: parsed xprv should be private", step.path)
			}
			if priv.ExtendedPublicKey() != step.xpub {
				t.Errorf("%s: xpub from parsed xprv = %s", step.path, priv.ExtendedPublicKey())
			}

			pub, err := ParseExtendedKey(step.xpub)
			if err != nil {
				t.Fatalf("ParseExtendedKey(%s) error: %v", step.xpub, err)
			}
			if pub.IsPrivate() || pub.ExtendedPrivateKey() != "" {
				t.Errorf("%s: parsed xpub should be public-only", step.path)
			}
			if pub.Fingerprint() != priv.Fingerprint() {
				t.Errorf("%s: fingerprints differ", step.path)
			}
		}
	}
}

// Walks vector 1 one step at a time on the same node.
func TestBIP32Vectors_InPlace(t *testing.T) {
	v := bip32Vectors[0]
	seed, _ := hex.DecodeString(v.seed)
	k, err := NewRootKey(seed, network.MainNet())
	if err != nil {
		t.Fatalf("NewRootKey() error: %v", err)
	}
	defer k.Zero()

	indices, err := ParsePath(v.steps[len(v.steps)-1].path)
	if err != nil {
		t.Fatalf("ParsePath() error: %v", err)
	}
	for n, idx := range indices {
		if err := k.Derive(idx); err != nil {
			t.Fatalf("Derive(%d) error: %v", idx, err)
		}
		xprv, err := Serialize(k, k.ParentFingerprint(), k.Network().PrivateVersion, false)
		if err != nil {
			t.Fatalf("Serialize() error: %v", err)
		}
		if want := v.steps[n+1].xprv; xprv != want {
			t.Errorf("depth %d: xprv = %s, want %s", n+1, xprv, want)
		}
	}
}
