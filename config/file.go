package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = strings.ToLower(value)
	case "datadir":
		cfg.DataDir = value

	// Mnemonic
	case "mnemonic.language":
		cfg.Mnemonic.Language = value
	case "mnemonic.entropy":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mnemonic.EntropyBits = n

	// Derivation
	case "derivation.path":
		cfg.Derivation.DefaultPath = value
	case "derivation.coin":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Derivation.CoinType = uint32(n)

	// Keystore
	case "keystore.memory":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Keystore.Memory = uint32(n)
	case "keystore.iterations":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Keystore.Iterations = uint32(n)
	case "keystore.parallelism":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return err
		}
		cfg.Keystore.Parallelism = uint8(n)
	case "keystore.ephemeral":
		cfg.Keystore.Ephemeral = parseBool(value)

	// RPC
	case "rpc.enabled", "rpc":
		cfg.RPC.Enabled = parseBool(value)
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.RPC.Port = port
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)
	case "rpc.cors":
		cfg.RPC.CORSOrigins = parseStringList(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file for cfg's network.
func WriteDefaultConfig(path string, cfg *Config) error {
	content := `# Klingnet HD Key Service Configuration

# Network: mainnet, testnet, regtest, simnet or signet
network = ` + cfg.Network + `

# Data directory (default: ~/.klingnet-hd)
# datadir = ~/.klingnet-hd

# ============================================================================
# Mnemonic
# ============================================================================

# Default wordlist: english, spanish, french, italian, japanese, korean,
# chinese_simplified, chinese_traditional, czech
mnemonic.language = ` + cfg.Mnemonic.Language + `

# Default entropy size in bits: 128, 160, 192, 224 or 256
mnemonic.entropy = ` + strconv.Itoa(cfg.Mnemonic.EntropyBits) + `

# ============================================================================
# Derivation
# ============================================================================

derivation.path = ` + cfg.Derivation.DefaultPath + `
derivation.coin = ` + strconv.FormatUint(uint64(cfg.Derivation.CoinType), 10) + `

# ============================================================================
# Keystore (Argon2id cost for newly created wallets)
# ============================================================================

keystore.memory = ` + strconv.FormatUint(uint64(cfg.Keystore.Memory), 10) + `
keystore.iterations = ` + strconv.FormatUint(uint64(cfg.Keystore.Iterations), 10) + `
keystore.parallelism = ` + strconv.Itoa(int(cfg.Keystore.Parallelism)) + `
keystore.ephemeral = ` + strconv.FormatBool(cfg.Keystore.Ephemeral) + `

# ============================================================================
# RPC Server
# ============================================================================

rpc.enabled = true
rpc.addr = ` + cfg.RPC.Addr + `
rpc.port = ` + strconv.Itoa(cfg.RPC.Port) + `
rpc.allowed = 127.0.0.1
# CORS allowed origins ("*" for all)
# rpc.cors = http://localhost:3000

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
