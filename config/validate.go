package config

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, ok := network.ByName(cfg.Network); !ok {
		return fmt.Errorf("network must be one of %s", strings.Join(network.Names(), ", "))
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}

	if mnemonic.WordsFromLanguage(cfg.Mnemonic.Language) == nil {
		return fmt.Errorf("mnemonic.language %q is not supported", cfg.Mnemonic.Language)
	}
	if !mnemonic.ValidEntropyBits(cfg.Mnemonic.EntropyBits) {
		return fmt.Errorf("mnemonic.entropy must be a multiple of 32 in [%d, %d]",
			mnemonic.MinEntropyBits, mnemonic.MaxEntropyBits)
	}

	if _, err := hdkey.ParsePath(cfg.Derivation.DefaultPath); err != nil {
		return fmt.Errorf("derivation.path: %w", err)
	}
	if cfg.Derivation.CoinType >= hdkey.HardenedOffset {
		return fmt.Errorf("derivation.coin must be below 2^31")
	}

	if cfg.Keystore.Iterations == 0 || cfg.Keystore.Parallelism == 0 {
		return fmt.Errorf("keystore.iterations and keystore.parallelism must be positive")
	}
	if cfg.Keystore.Memory < 8*uint32(cfg.Keystore.Parallelism) {
		return fmt.Errorf("keystore.memory must be at least 8 KiB per lane")
	}
	return nil
}
