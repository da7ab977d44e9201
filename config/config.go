// Package config handles daemon and CLI configuration.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults for the selected network, the <datadir>/hdkeyd.conf file, and
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

// Network names with built-in defaults. Any name known to the network
// registry is accepted; these two only select default ports and paths.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// Config holds runtime configuration.
type Config struct {
	// Core
	Network string `conf:"network"`
	DataDir string `conf:"datadir"`

	// Mnemonic defaults applied when a request omits them
	Mnemonic MnemonicConfig

	// Default derivation settings
	Derivation DerivationConfig

	// Keystore encryption cost
	Keystore KeystoreConfig

	// RPC server
	RPC RPCConfig

	// Logging
	Log LogConfig
}

// MnemonicConfig holds phrase generation defaults.
type MnemonicConfig struct {
	Language    string `conf:"mnemonic.language"`
	EntropyBits int    `conf:"mnemonic.entropy"`
}

// DerivationConfig holds derivation defaults.
type DerivationConfig struct {
	DefaultPath string `conf:"derivation.path"`
	CoinType    uint32 `conf:"derivation.coin"` // BIP44 coin type for new accounts
}

// KeystoreConfig holds Argon2id parameters for new wallets.
type KeystoreConfig struct {
	Memory      uint32 `conf:"keystore.memory"` // KiB
	Iterations  uint32 `conf:"keystore.iterations"`
	Parallelism uint8  `conf:"keystore.parallelism"`
	// Ephemeral keeps wallets in memory; they are lost on shutdown.
	Ephemeral bool `conf:"keystore.ephemeral"`
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// Endpoint returns host:port for the RPC listener.
func (r RPCConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", r.Addr, r.Port)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// Profile resolves the configured network.
func (c *Config) Profile() (network.Profile, error) {
	p, ok := network.ByName(c.Network)
	if !ok {
		return network.Profile{}, fmt.Errorf("unknown network %q", c.Network)
	}
	return p, nil
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-hd
//	macOS:   ~/Library/Application Support/KlingnetHD
//	Windows: %APPDATA%\KlingnetHD
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-hd"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetHD")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetHD")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetHD")
	default:
		return filepath.Join(home, ".klingnet-hd")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, c.Network)
}

// KeystoreDir returns the keystore database directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "hdkeyd.conf")
}
