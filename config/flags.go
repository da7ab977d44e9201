package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string

	// Mnemonic
	Language    string
	EntropyBits int

	// Derivation
	DerivationPath string

	// Keystore
	KeystoreEphemeral bool

	// RPC
	RPC        bool
	RPCAddr    string
	RPCPort    int
	RPCAllowed string
	RPCCORS    string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	fs *pflag.FlagSet
}

// BindFlags registers the configuration flags on fs. The returned Flags is
// filled in when fs is parsed.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	// Core
	fs.StringVar(&f.Network, "network", "", "Network: mainnet (default), testnet, regtest, simnet, signet")
	fs.BoolVar(&f.Testnet, "testnet", false, "Shorthand for --network=testnet")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVarP(&f.Config, "config", "c", "", "Config file path")

	// Mnemonic
	fs.StringVar(&f.Language, "language", "", "Default mnemonic language")
	fs.IntVar(&f.EntropyBits, "entropy", 0, "Default mnemonic entropy in bits")

	// Derivation
	fs.StringVar(&f.DerivationPath, "path", "", "Default derivation path")

	// Keystore
	fs.BoolVar(&f.KeystoreEphemeral, "keystore-ephemeral", false, "Keep wallets in memory only")

	// RPC
	fs.BoolVar(&f.RPC, "rpc", true, "Enable RPC server")
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "RPC listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "RPC listen port")
	fs.StringVar(&f.RPCAllowed, "rpc-allowed", "", "Allowed IPs for RPC (comma-separated)")
	fs.StringVar(&f.RPCCORS, "rpc-cors", "", "Allowed CORS origins for RPC (comma-separated)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	return f
}

// ParseFlags parses daemon command-line flags. It returns pflag.ErrHelp
// when --help was given.
func ParseFlags(args []string) (*Flags, error) {
	fs := pflag.NewFlagSet("hdkeyd", pflag.ContinueOnError)
	f := BindFlags(fs)
	fs.BoolVarP(&f.Help, "help", "h", false, "Show help message")
	fs.BoolVarP(&f.Version, "version", "v", false, "Show version information")
	fs.Usage = printUsage

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	f.Args = fs.Args()
	if f.Help {
		fs.Usage()
		return f, pflag.ErrHelp
	}
	return f, nil
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// network returns the network selected on the command line, or "".
func (f *Flags) network() string {
	if f.Testnet {
		return Testnet
	}
	return strings.ToLower(f.Network)
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if n := f.network(); n != "" {
		cfg.Network = n
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Mnemonic
	if f.Language != "" {
		cfg.Mnemonic.Language = f.Language
	}
	if f.EntropyBits != 0 {
		cfg.Mnemonic.EntropyBits = f.EntropyBits
	}

	// Derivation
	if f.DerivationPath != "" {
		cfg.Derivation.DefaultPath = f.DerivationPath
	}

	// Keystore
	if f.changed("keystore-ephemeral") {
		cfg.Keystore.Ephemeral = f.KeystoreEphemeral
	}

	// RPC
	if f.changed("rpc") {
		cfg.RPC.Enabled = f.RPC
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.RPCAllowed != "" {
		cfg.RPC.AllowedIPs = parseStringList(f.RPCAllowed)
	}
	if f.RPCCORS != "" {
		cfg.RPC.CORSOrigins = parseStringList(f.RPCCORS)
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.changed("log-json") {
		cfg.Log.JSON = f.LogJSON
	}
}

func printUsage() {
	usage := `hdkeyd - BIP39 mnemonic and BIP32 key derivation service

Usage:
  hdkeyd [options]
  hdkeyd --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network: mainnet (default), testnet, regtest, simnet, signet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.klingnet-hd)
  --config, -c    Config file path (default: <datadir>/hdkeyd.conf)

Mnemonic Options:
  --language      Default wordlist (default: english)
  --entropy       Default entropy size in bits (default: 256)

Derivation Options:
  --path          Default derivation path (mainnet: m/44'/0'/0'/0/0)

Keystore Options:
  --keystore-ephemeral  Keep wallets in memory only (default: false)

RPC Options:
  --rpc           Enable RPC server (default: true)
  --rpc-addr      RPC listen address (default: 127.0.0.1)
  --rpc-port      RPC port (mainnet: 8745, testnet: 8845)
  --rpc-allowed   Allowed IPs for RPC (comma-separated)
  --rpc-cors      Allowed CORS origins for RPC (comma-separated)

Logging Options:
  --log-level     Log level: trace, debug, info, warn, error (default: info)
  --log-file      Log file path (default: <datadir>/logs/hdkeyd.log)
  --log-json      Output logs as JSON

Examples:
  # Start on mainnet
  hdkeyd

  # Start on testnet with a custom data directory
  hdkeyd --testnet --datadir=/path/to/data
`
	fmt.Fprint(os.Stderr, usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, flags, err
	}
	if flags.Version {
		return nil, flags, nil
	}
	cfg, err := LoadWithFlags(flags)
	return cfg, flags, err
}

// LoadWithFlags builds a Config from defaults, the config file and flags
// that were already parsed.
func LoadWithFlags(flags *Flags) (*Config, error) {
	cfg := Default(flags.network())
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	// A network chosen in the file but not on the command line still picks
	// up that network's defaults for values the file leaves unset.
	if flags.network() == "" && cfg.Network != Mainnet {
		rebased := Default(cfg.Network)
		rebased.DataDir = cfg.DataDir
		if err := ApplyFileConfig(rebased, fileValues); err != nil {
			return nil, fmt.Errorf("applying config file: %w", err)
		}
		cfg = rebased
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.KeystoreDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefaultConfig(configPath, cfg); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
