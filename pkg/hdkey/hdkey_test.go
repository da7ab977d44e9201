package hdkey

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// testRoot returns the master node for the "abandon ... about" phrase with
// passphrase "TREZOR".
func testRoot(t *testing.T) *HDKey {
	t.Helper()
	seed := MakeBip39Seed(testMnemonic, "TREZOR")
	defer seed.Zero()
	root, err := NewRootKey(seed.Bytes(), network.MainNet())
	if err != nil {
		t.Fatalf("NewRootKey() error: %v", err)
	}
	return root
}

// flakyCurve rejects the first failures child tweaks.
type flakyCurve struct {
	crypto.Curve
	failures int
	calls    int
}

func (c *flakyCurve) AddPrivate(k, tweak *[32]byte) ([32]byte, error) {
	c.calls++
	if c.failures < 0 || c.calls <= c.failures {
		return [32]byte{}, crypto.ErrScalarOutOfRange
	}
	return c.Curve.AddPrivate(k, tweak)
}

func (c *flakyCurve) AddPublic(pub *[33]byte, tweak *[32]byte) ([33]byte, error) {
	c.calls++
	if c.failures < 0 || c.calls <= c.failures {
		return [33]byte{}, crypto.ErrPointAtInfinity
	}
	return c.Curve.AddPublic(pub, tweak)
}

// rejectingCurve refuses every private key.
type rejectingCurve struct{ crypto.Curve }

func (rejectingCurve) ValidPrivateKey(*[32]byte) bool { return false }

func TestNewRootKey(t *testing.T) {
	root := testRoot(t)
	defer root.Zero()

	if !root.IsPrivate() {
		t.Error("root key should be private")
	}
	if root.Depth() != 0 || root.Index() != 0 || root.ParentFingerprint() != 0 {
		t.Errorf("root metadata = depth %d, index %d, parent %08x", root.Depth(), root.Index(), root.ParentFingerprint())
	}
	if len(root.PrivateKey()) != 32 {
		t.Errorf("private key length = %d, want 32", len(root.PrivateKey()))
	}
	pub := root.PublicKey()
	if len(pub) != 33 || (pub[0] != 0x02 && pub[0] != 0x03) {
		t.Errorf("public key = %x, want compressed point", pub)
	}
	if root.Network().Name != "bitcoin" {
		t.Errorf("network = %s", root.Network().Name)
	}
}

func TestNewRootKey_Deterministic(t *testing.T) {
	a := testRoot(t)
	b := testRoot(t)
	if !bytes.Equal(a.PrivateKey(), b.PrivateKey()) ||
		!bytes.Equal(a.PublicKey(), b.PublicKey()) ||
		!bytes.Equal(a.ChainCode(), b.ChainCode()) {
		t.Error("same seed should produce the same root")
	}
}

func TestNewRootKey_SeedSize(t *testing.T) {
	for _, n := range []int{0, 15, 65, 128} {
		if _, err := NewRootKey(make([]byte, n), network.MainNet()); !errors.Is(err, ErrSeedSize) {
			t.Errorf("NewRootKey(%d bytes) error = %v, want ErrSeedSize", n, err)
		}
	}
	for _, n := range []int{16, 32, 64} {
		if _, err := NewRootKey(bytes.Repeat([]byte{1}, n), network.MainNet()); err != nil {
			t.Errorf("NewRootKey(%d bytes) error: %v", n, err)
		}
	}
}

func TestNewRootKey_InvalidMaster(t *testing.T) {
	curve := rejectingCurve{crypto.Secp256k1()}
	_, err := NewRootKeyWithCurve(make([]byte, 64), network.MainNet(), curve)
	if !errors.Is(err, ErrInvalidMasterKey) {
		t.Errorf("error = %v, want ErrInvalidMasterKey", err)
	}
}

func TestNewRootKeyFromMnemonic(t *testing.T) {
	a, err := NewRootKeyFromMnemonic(testMnemonic, "TREZOR", network.MainNet())
	if err != nil {
		t.Fatalf("NewRootKeyFromMnemonic() error: %v", err)
	}
	b := testRoot(t)
	if !bytes.Equal(a.PrivateKey(), b.PrivateKey()) {
		t.Error("phrase root should match seed root")
	}

	words := strings.Fields(testMnemonic)
	if *MakeBip39SeedFromWords(words, "TREZOR") != *MakeBip39Seed(testMnemonic, "TREZOR") {
		t.Error("word list and phrase seeds should match")
	}
}

func TestDerive_HardenedFromPublic(t *testing.T) {
	pub := testRoot(t).Neuter()
	before := pub.PublicKey()

	err := pub.Derive(HardenedOffset)
	if !errors.Is(err, ErrDeriveHardFromPublic) {
		t.Fatalf("Derive(hardened) error = %v, want ErrDeriveHardFromPublic", err)
	}
	if !bytes.Equal(pub.PublicKey(), before) || pub.Depth() != 0 {
		t.Error("failed derive should leave the node unchanged")
	}
}

func TestDerive_PublicMatchesPrivate(t *testing.T) {
	root := testRoot(t)

	priv, err := root.Extend("m/0/1/2")
	if err != nil {
		t.Fatalf("Extend() error: %v", err)
	}
	pub, err := root.Neuter().Extend("M/0/1/2")
	if err != nil {
		t.Fatalf("Extend() on public root error: %v", err)
	}
	if pub.ExtendedPublicKey() != priv.ExtendedPublicKey() {
		t.Errorf("public derivation = %s, want %s", pub.ExtendedPublicKey(), priv.ExtendedPublicKey())
	}
	if pub.IsPrivate() || pub.ExtendedPrivateKey() != "" {
		t.Error("public derivation should not produce a private key")
	}
}

func TestDerive_RetriesNextIndex(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	curve := &flakyCurve{Curve: crypto.Secp256k1(), failures: 1}
	flaky, err := NewRootKeyWithCurve(seed, network.MainNet(), curve)
	if err != nil {
		t.Fatalf("NewRootKeyWithCurve() error: %v", err)
	}
	if err := flaky.Derive(5); err != nil {
		t.Fatalf("Derive(5) error: %v", err)
	}
	if flaky.Index() != 6 {
		t.Errorf("Index() = %d, want 6", flaky.Index())
	}
	if flaky.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", flaky.Depth())
	}

	plain, err := NewRootKey(seed, network.MainNet())
	if err != nil {
		t.Fatalf("NewRootKey() error: %v", err)
	}
	if err := plain.Derive(6); err != nil {
		t.Fatalf("Derive(6) error: %v", err)
	}
	if !bytes.Equal(flaky.PrivateKey(), plain.PrivateKey()) || !bytes.Equal(flaky.ChainCode(), plain.ChainCode()) {
		t.Error("skipped index should produce the child at index+1")
	}
}

func TestDerive_RetryIntoHardenedRange(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	curve := &flakyCurve{Curve: crypto.Secp256k1()}
	root, err := NewRootKeyWithCurve(seed, network.MainNet(), curve)
	if err != nil {
		t.Fatalf("NewRootKeyWithCurve() error: %v", err)
	}
	pub := root.Neuter()
	curve.failures = 1

	if err := pub.Derive(HardenedOffset - 1); !errors.Is(err, ErrDeriveHardFromPublic) {
		t.Errorf("error = %v, want ErrDeriveHardFromPublic", err)
	}
}

func TestDerive_IndexExhausted(t *testing.T) {
	curve := &flakyCurve{Curve: crypto.Secp256k1(), failures: -1}
	root, err := NewRootKeyWithCurve(bytes.Repeat([]byte{9}, 32), network.MainNet(), curve)
	if err != nil {
		t.Fatalf("NewRootKeyWithCurve() error: %v", err)
	}
	before := root.PrivateKey()
	if err := root.Derive(math.MaxUint32 - 1); !errors.Is(err, ErrIndexExhausted) {
		t.Fatalf("error = %v, want ErrIndexExhausted", err)
	}
	if !bytes.Equal(root.PrivateKey(), before) || root.Depth() != 0 {
		t.Error("failed derive should leave the node unchanged")
	}
}

func TestDerive_MaxDepth(t *testing.T) {
	k := testRoot(t)
	k.depth = MaxDepth
	if err := k.Derive(0); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("error = %v, want ErrMaxDepth", err)
	}
}

func TestDerive_Metadata(t *testing.T) {
	root := testRoot(t)
	child := root.Clone()
	if err := child.Derive(HardenedOffset + 44); err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	if child.Depth() != 1 || child.Index() != HardenedOffset+44 {
		t.Errorf("child depth %d index %d", child.Depth(), child.Index())
	}
	if child.ParentFingerprint() != root.Fingerprint() {
		t.Errorf("parent fingerprint = %08x, want %08x", child.ParentFingerprint(), root.Fingerprint())
	}
	if bytes.Equal(child.PrivateKey(), root.PrivateKey()) {
		t.Error("Clone() should not alias the root")
	}
}

func TestDerivePath(t *testing.T) {
	root := testRoot(t)

	k := root.Clone()
	if err := k.DerivePath("m/44'/0'/0'/0/0", true); err != nil {
		t.Fatalf("DerivePath() error: %v", err)
	}
	if k.Depth() != 5 || !k.IsPrivate() {
		t.Errorf("depth %d private %v", k.Depth(), k.IsPrivate())
	}

	pub := root.Clone()
	if err := pub.DerivePath("m/44'/0'/0'/0/0", false); err != nil {
		t.Fatalf("DerivePath(public) error: %v", err)
	}
	if pub.IsPrivate() || pub.PrivateKey() != nil {
		t.Error("wantPrivate=false should leave a public-only node")
	}
	if !bytes.Equal(pub.PublicKey(), k.PublicKey()) {
		t.Error("public-only node should keep the same public key")
	}
	if _, err := Serialize(pub, pub.ParentFingerprint(), pub.Network().PrivateVersion, false); !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("Serialize(private) on public node error = %v", err)
	}
	if err := pub.DerivePath("m/0", true); !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("DerivePath(wantPrivate) on public node error = %v", err)
	}

	// "m" alone derives nothing.
	same := root.Clone()
	if err := same.DerivePath("m", true); err != nil {
		t.Fatalf("DerivePath(m) error: %v", err)
	}
	if !bytes.Equal(same.PrivateKey(), root.PrivateKey()) || same.Depth() != 0 {
		t.Error("DerivePath(m) should not change the node")
	}
}

func TestDerivePath_Atomic(t *testing.T) {
	pub := testRoot(t).Neuter()
	before := pub.PublicKey()
	if err := pub.DerivePath("m/0/1/2'", false); !errors.Is(err, ErrDeriveHardFromPublic) {
		t.Fatalf("error = %v, want ErrDeriveHardFromPublic", err)
	}
	if !bytes.Equal(pub.PublicKey(), before) || pub.Depth() != 0 {
		t.Error("failed path should leave the node unchanged")
	}

	if err := pub.DerivePath("m/x", false); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("bad path error = %v, want ErrInvalidPath", err)
	}
}

func TestZero(t *testing.T) {
	k, err := testRoot(t).Extend("m/1'")
	if err != nil {
		t.Fatalf("Extend() error: %v", err)
	}
	ext := k.extPrivate
	k.Zero()

	if k.IsPrivate() || k.privateKey != [32]byte{} || k.chainCode != [32]byte{} {
		t.Error("Zero() left key material behind")
	}
	for _, b := range ext {
		if b != 0 {
			t.Fatal("Zero() should wipe the stored xprv")
		}
	}
	if err := k.Derive(0); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Derive on zeroed key error = %v, want ErrEmptyKey", err)
	}
}

func TestSigner(t *testing.T) {
	k, err := testRoot(t).Extend(BIP44Path(0, 0, ChangeExternal, 0))
	if err != nil {
		t.Fatalf("Extend() error: %v", err)
	}
	signer, err := k.Signer()
	if err != nil {
		t.Fatalf("Signer() error: %v", err)
	}
	defer signer.Zero()

	if !bytes.Equal(signer.PublicKey(), k.PublicKey()) {
		t.Error("signer public key should match the node")
	}
	digest := crypto.SHA256([]byte("hello"))
	sig, err := signer.Sign(digest[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !crypto.VerifySignature(digest[:], sig, k.PublicKey()) {
		t.Error("signature should verify")
	}

	if _, err := k.Neuter().Signer(); !errors.Is(err, ErrNoPrivateKey) {
		t.Errorf("Signer() on public node error = %v", err)
	}
}

func TestTestNetSerialization(t *testing.T) {
	seed := bytes.Repeat([]byte{3}, 32)
	k, err := NewRootKey(seed, network.TestNet())
	if err != nil {
		t.Fatalf("NewRootKey() error: %v", err)
	}
	if err := MakeExtendedKey(k, "m/0'"); err != nil {
		t.Fatalf("MakeExtendedKey() error: %v", err)
	}
	if !strings.HasPrefix(k.ExtendedPrivateKey(), "tprv") || !strings.HasPrefix(k.ExtendedPublicKey(), "tpub") {
		t.Errorf("testnet keys = %s / %s", k.ExtendedPrivateKey(), k.ExtendedPublicKey())
	}

	parsed, err := ParseExtendedKey(k.ExtendedPrivateKey())
	if err != nil {
		t.Fatalf("ParseExtendedKey() error: %v", err)
	}
	if parsed.Network().Name != "testnet" {
		t.Errorf("parsed network = %s", parsed.Network().Name)
	}
}
