package rpc

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-hd/internal/wallet"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeUnauthorized   = -32001
	CodeConflict       = -32002
)

// Mnemonic status codes. These values are part of the wire contract and
// never change.
const (
	StatusOK                 = 0
	StatusUnsupportedEntropy = 1
	StatusUnknownError       = 2
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ── Mnemonic ────────────────────────────────────────────────────────────

// LanguageParam is used by mnemonic_getWords.
type LanguageParam struct {
	Language string `json:"language,omitempty"`
}

// GenerateParam is used by mnemonic_generate. Zero values take the
// server defaults.
type GenerateParam struct {
	Language    string `json:"language,omitempty"`
	EntropyBits int    `json:"entropy_bits,omitempty"`
}

// EncodeBytesParam is used by mnemonic_encodeBytes. EntropyBits defaults to
// the decoded entropy length.
type EncodeBytesParam struct {
	Entropy     string `json:"entropy"` // hex
	Language    string `json:"language,omitempty"`
	EntropyBits int    `json:"entropy_bits,omitempty"`
}

// ValidateParam is used by mnemonic_validate.
type ValidateParam struct {
	Phrase   string `json:"phrase"`
	Language string `json:"language,omitempty"`
}

// ToSeedParam is used by mnemonic_toSeed.
type ToSeedParam struct {
	Phrase     string `json:"phrase"`
	Passphrase string `json:"passphrase,omitempty"`
}

// LanguagesResult is returned by mnemonic_getLanguages.
type LanguagesResult struct {
	Languages []string `json:"languages"`
	Default   string   `json:"default"`
}

// WordsResult is returned by mnemonic_getWords.
type WordsResult struct {
	Language string   `json:"language"`
	Words    []string `json:"words"`
}

// MnemonicResult is returned by mnemonic_generate and mnemonic_encodeBytes.
// A non-zero Status carries no words.
type MnemonicResult struct {
	Status     int      `json:"status"`
	StatusName string   `json:"status_name"`
	Language   string   `json:"language"`
	Words      []string `json:"words"`
	Phrase     string   `json:"phrase,omitempty"`
}

// ValidateResult is returned by mnemonic_validate.
type ValidateResult struct {
	Valid bool `json:"valid"`
}

// SeedResult is returned by mnemonic_toSeed.
type SeedResult struct {
	Seed string `json:"seed"` // hex
}

// ── HD keys ─────────────────────────────────────────────────────────────

// DeriveParam is used by hdkey_derive. Exactly one of Phrase, Seed and Key
// selects the root.
type DeriveParam struct {
	Phrase     string `json:"phrase,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
	Seed       string `json:"seed,omitempty"` // hex
	Key        string `json:"key,omitempty"`  // xprv or xpub
	Network    string `json:"network,omitempty"`
	Path       string `json:"path,omitempty"`
	Public     bool   `json:"public,omitempty"` // omit the private serialization
}

// DecodeParam is used by hdkey_decode.
type DecodeParam struct {
	Key string `json:"key"`
}

// KeyResult describes one node of a key tree.
type KeyResult struct {
	Network           string `json:"network"`
	Path              string `json:"path,omitempty"`
	Depth             uint8  `json:"depth"`
	Index             uint32 `json:"index"`
	Hardened          bool   `json:"hardened"`
	ParentFingerprint string `json:"parent_fingerprint"`
	Fingerprint       string `json:"fingerprint"`
	ChainCode         string `json:"chain_code"`
	PublicKey         string `json:"public_key"`
	XPub              string `json:"xpub"`
	XPrv              string `json:"xprv,omitempty"`
}

// ── Wallet ──────────────────────────────────────────────────────────────

// WalletCreateParam is used by wallet_create.
type WalletCreateParam struct {
	Name        string `json:"name"`
	Password    string `json:"password"`
	Passphrase  string `json:"passphrase,omitempty"`
	Language    string `json:"language,omitempty"`
	EntropyBits int    `json:"entropy_bits,omitempty"`
	Network     string `json:"network,omitempty"`
}

// WalletImportParam is used by wallet_import.
type WalletImportParam struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase,omitempty"`
	Language   string `json:"language,omitempty"`
	Network    string `json:"network,omitempty"`
}

// WalletNameParam is used by wallet_listAccounts.
type WalletNameParam struct {
	Name string `json:"name"`
}

// WalletDeriveAccountParam is used by wallet_deriveAccount. An empty Path
// derives the next BIP44 account for Coin.
type WalletDeriveAccountParam struct {
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Path     string  `json:"path,omitempty"`
	Coin     *uint32 `json:"coin,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// WalletCreateResult is returned by wallet_create.
type WalletCreateResult struct {
	Wallet   *wallet.Info `json:"wallet"`
	Mnemonic string       `json:"mnemonic"`
}
