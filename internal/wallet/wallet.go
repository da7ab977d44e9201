package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
)

// Wallet is an unlocked wallet holding its master node in memory.
// Close wipes it.
type Wallet struct {
	name string
	ks   *Keystore
	root *hdkey.HDKey
}

// Open decrypts a wallet and rebuilds its master node.
func (ks *Keystore) Open(name string, password []byte) (*Wallet, error) {
	net, err := ks.Network(name)
	if err != nil {
		return nil, err
	}
	seed, err := ks.LoadSeed(name, password)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(seed)

	root, err := hdkey.NewRootKey(seed, net)
	if err != nil {
		return nil, fmt.Errorf("rebuild root key: %w", err)
	}
	log.Wallet.Debug().Str("wallet", name).Msg("Wallet unlocked")
	return &Wallet{name: name, ks: ks, root: root}, nil
}

// Name returns the wallet name.
func (w *Wallet) Name() string { return w.name }

// MasterXPub returns the extended public key of the master node.
func (w *Wallet) MasterXPub() (string, error) {
	return hdkey.Serialize(w.root, 0, w.root.Network().Version(true), true)
}

// Derive returns the node at path with both serializations filled in.
// The caller owns the node and must Zero it.
func (w *Wallet) Derive(path hdkey.Derivation) (*hdkey.HDKey, error) {
	if w.root == nil {
		return nil, fmt.Errorf("wallet %q is closed", w.name)
	}
	return w.root.Extend(path)
}

// DeriveAccount derives path and records its extended public key.
func (w *Wallet) DeriveAccount(path hdkey.Derivation, label string) (*AccountEntry, error) {
	node, err := w.Derive(path)
	if err != nil {
		return nil, err
	}
	defer node.Zero()

	acct := AccountEntry{
		Path:        path.String(),
		Label:       label,
		XPub:        node.ExtendedPublicKey(),
		Fingerprint: node.Fingerprint(),
	}
	if err := w.ks.AddAccount(w.name, acct); err != nil {
		return nil, err
	}
	acct.Path, _ = canonicalPath(acct.Path)
	return &acct, nil
}

// NextAccount derives and records the next unused BIP44 account
// m/44'/coin'/n' for the wallet.
func (w *Wallet) NextAccount(coin uint32, label string) (*AccountEntry, error) {
	w.ks.mu.Lock()
	defer w.ks.mu.Unlock()

	rec, err := w.ks.getRecord(w.name)
	if err != nil {
		return nil, err
	}
	path := hdkey.Derivation(fmt.Sprintf("m/%d'/%d'/%d'", hdkey.PurposeBIP44, coin, rec.NextAccount))
	node, err := w.Derive(path)
	if err != nil {
		return nil, err
	}
	defer node.Zero()

	acct := AccountEntry{
		Path:        path.String(),
		Label:       label,
		XPub:        node.ExtendedPublicKey(),
		Fingerprint: node.Fingerprint(),
	}
	if err := w.ks.addAccountLocked(w.name, acct); err != nil {
		return nil, err
	}
	rec.NextAccount++
	if err := w.ks.putRecord(w.name, rec); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Signer returns a Schnorr signer for the key at path. The caller must Zero it.
func (w *Wallet) Signer(path hdkey.Derivation) (*crypto.PrivateKey, error) {
	node, err := w.Derive(path)
	if err != nil {
		return nil, err
	}
	defer node.Zero()
	return node.Signer()
}

// Close wipes the master node.
func (w *Wallet) Close() {
	if w.root != nil {
		w.root.Zero()
		w.root = nil
	}
}
