package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-hd/internal/storage"
	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
)

// AccountEntry records an extended public key derived from a wallet.
type AccountEntry struct {
	Path        string    `json:"path"`
	Label       string    `json:"label,omitempty"`
	XPub        string    `json:"xpub"`
	Fingerprint uint32    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

func accountKeyPrefix(wallet string) []byte {
	return []byte(wallet + "/")
}

// canonicalPath normalizes a path so "m/0h" and "M/0'" share one record.
func canonicalPath(path string) (string, error) {
	indices, err := hdkey.Derivation(path).Indices()
	if err != nil {
		return "", err
	}
	return hdkey.FormatPath(indices), nil
}

// AddAccount records an account for a wallet. Recording the same path and
// key twice is a no-op.
func (ks *Keystore) AddAccount(walletName string, acct AccountEntry) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.addAccountLocked(walletName, acct)
}

func (ks *Keystore) addAccountLocked(walletName string, acct AccountEntry) error {
	if _, err := ks.getRecord(walletName); err != nil {
		return err
	}
	path, err := canonicalPath(acct.Path)
	if err != nil {
		return err
	}
	acct.Path = path

	db := storage.NewPrefixDB(ks.accounts, accountKeyPrefix(walletName))
	existing, err := db.Get([]byte(path))
	switch {
	case err == nil:
		var prev AccountEntry
		if err := json.Unmarshal(existing, &prev); err != nil {
			return fmt.Errorf("parse account: %w", err)
		}
		if prev.XPub == acct.XPub {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAccountExists, path)
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("read account: %w", err)
	}

	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(acct)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	return db.Put([]byte(path), data)
}

// ListAccounts returns the recorded accounts of a wallet, ordered by path.
func (ks *Keystore) ListAccounts(walletName string) ([]AccountEntry, error) {
	if _, err := ks.getRecord(walletName); err != nil {
		return nil, err
	}
	accounts := []AccountEntry{}
	db := storage.NewPrefixDB(ks.accounts, accountKeyPrefix(walletName))
	err := db.ForEach(nil, func(_, value []byte) error {
		var a AccountEntry
		if err := json.Unmarshal(value, &a); err != nil {
			return fmt.Errorf("parse account: %w", err)
		}
		accounts = append(accounts, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (ks *Keystore) countAccounts(walletName string) (int, error) {
	var n int
	db := storage.NewPrefixDB(ks.accounts, accountKeyPrefix(walletName))
	err := db.ForEach(nil, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}
