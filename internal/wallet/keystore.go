package wallet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/internal/storage"
	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

const recordVersion = 1

// Key namespaces inside the keystore database.
var (
	walletPrefix  = []byte("w/")
	accountPrefix = []byte("a/")
)

var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrInvalidName    = errors.New("invalid wallet name")
	ErrAccountExists  = errors.New("account path already recorded with a different key")
	ErrInvalidPhrase  = errors.New("invalid mnemonic phrase")
)

// walletRecord is the stored form of a wallet.
type walletRecord struct {
	Version       int       `json:"version"`
	ID            string    `json:"id"`
	Network       string    `json:"network"`
	CreatedAt     time.Time `json:"created_at"`
	EncryptedSeed []byte    `json:"encrypted_seed"`
	Language      string    `json:"language,omitempty"`
	NextAccount   uint32    `json:"next_account"`
}

// Info is the public metadata of a stored wallet.
type Info struct {
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"created_at"`
	Language  string    `json:"language,omitempty"`
	Accounts  int       `json:"accounts"`
}

// Keystore stores encrypted wallet seeds and the extended public keys of
// accounts derived from them.
type Keystore struct {
	mu       sync.Mutex
	wallets  *storage.PrefixDB
	accounts *storage.PrefixDB
	params   EncryptionParams
}

// NewKeystore creates a keystore on db. Seeds are sealed with params.
func NewKeystore(db storage.DB, params EncryptionParams) *Keystore {
	return &Keystore{
		wallets:  storage.NewPrefixDB(db, walletPrefix),
		accounts: storage.NewPrefixDB(db, accountPrefix),
		params:   params,
	}
}

func validateName(name string) error {
	if name == "" || len(name) > 64 || strings.ContainsAny(name, "/\x00") ||
		strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// walletID identifies a wallet by its master public key and chain code,
// so the same seed always yields the same ID.
func walletID(root *hdkey.HDKey) string {
	buf := append(root.PublicKey(), root.ChainCode()...)
	defer crypto.Zero(buf)
	h := crypto.Hash(buf)
	return hex.EncodeToString(h[:8])
}

// Create stores a new wallet for seed, sealed under password.
func (ks *Keystore) Create(name string, seed, password []byte, net network.Profile) (*Info, error) {
	return ks.create(name, seed, password, net, "")
}

// ImportMnemonic validates phrase in language and stores the wallet for its seed.
func (ks *Keystore) ImportMnemonic(name, language, phrase, passphrase string, password []byte, net network.Profile) (*Info, error) {
	if !mnemonic.ValidateWords(language, phrase) {
		return nil, ErrInvalidPhrase
	}
	seed := mnemonic.WordsToSeed(phrase, passphrase)
	defer seed.Zero()
	return ks.create(name, seed.Bytes(), password, net, strings.ToLower(language))
}

func (ks *Keystore) create(name string, seed, password []byte, net network.Profile, language string) (*Info, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	root, err := hdkey.NewRootKey(seed, net)
	if err != nil {
		return nil, fmt.Errorf("create root key: %w", err)
	}
	id := walletID(root)
	root.Zero()

	ks.mu.Lock()
	defer ks.mu.Unlock()

	exists, err := ks.wallets.Has([]byte(name))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	encrypted, err := Encrypt(seed, password, ks.params)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed: %w", err)
	}

	rec := &walletRecord{
		Version:       recordVersion,
		ID:            id,
		Network:       net.Key(),
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: encrypted,
		Language:      language,
	}
	if err := ks.putRecord(name, rec); err != nil {
		return nil, err
	}

	log.Wallet.Info().Str("wallet", name).Str("id", id).Str("network", net.Key()).Msg("Wallet created")
	return rec.info(name, 0), nil
}

// LoadSeed decrypts the seed of a wallet. The caller must Zero the result.
func (ks *Keystore) LoadSeed(name string, password []byte) ([]byte, error) {
	rec, err := ks.getRecord(name)
	if err != nil {
		return nil, err
	}
	seed, err := Decrypt(rec.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	return seed, nil
}

// Info returns the metadata of a wallet.
func (ks *Keystore) Info(name string) (*Info, error) {
	rec, err := ks.getRecord(name)
	if err != nil {
		return nil, err
	}
	n, err := ks.countAccounts(name)
	if err != nil {
		return nil, err
	}
	return rec.info(name, n), nil
}

// List returns the metadata of every wallet, sorted by name.
func (ks *Keystore) List() ([]Info, error) {
	var names []string
	err := ks.wallets.ForEach(nil, func(key, _ []byte) error {
		names = append(names, string(key))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	out := make([]Info, 0, len(names))
	for _, name := range names {
		info, err := ks.Info(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	return out, nil
}

// Delete removes a wallet and its account records.
func (ks *Keystore) Delete(name string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if _, err := ks.getRecord(name); err != nil {
		return err
	}
	if err := storage.NewPrefixDB(ks.accounts, accountKeyPrefix(name)).DeleteAll(); err != nil {
		return fmt.Errorf("delete accounts: %w", err)
	}
	if err := ks.wallets.Delete([]byte(name)); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Wallet.Info().Str("wallet", name).Msg("Wallet deleted")
	return nil
}

// Network resolves the profile a wallet was created for.
func (ks *Keystore) Network(name string) (network.Profile, error) {
	rec, err := ks.getRecord(name)
	if err != nil {
		return network.Profile{}, err
	}
	net, ok := network.ByName(rec.Network)
	if !ok {
		return network.Profile{}, fmt.Errorf("wallet %q has unknown network %q", name, rec.Network)
	}
	return net, nil
}

func (r *walletRecord) info(name string, accounts int) *Info {
	return &Info{
		Name:      name,
		ID:        r.ID,
		Network:   r.Network,
		CreatedAt: r.CreatedAt,
		Language:  r.Language,
		Accounts:  accounts,
	}
}

func (ks *Keystore) getRecord(name string) (*walletRecord, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := ks.wallets.Get([]byte(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var rec walletRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", rec.Version)
	}
	return &rec, nil
}

func (ks *Keystore) putRecord(name string, rec *walletRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := ks.wallets.Put([]byte(name), data); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}
