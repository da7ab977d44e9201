package config

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Mnemonic: MnemonicConfig{
			Language:    "english",
			EntropyBits: 256,
		},
		Derivation: DerivationConfig{
			DefaultPath: "m/44'/0'/0'/0/0",
			CoinType:    0,
		},
		Keystore: KeystoreConfig{
			Memory:      64 * 1024, // 64 MB
			Iterations:  3,
			Parallelism: 4,
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8745,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Derivation.DefaultPath = "m/44'/1'/0'/0/0"
	cfg.Derivation.CoinType = 1
	cfg.RPC.Port = 8845
	return cfg
}

// Default returns the default configuration for the given network. Networks
// other than mainnet share the testnet defaults under their own name.
func Default(network string) *Config {
	switch network {
	case "", Mainnet:
		return DefaultMainnet()
	default:
		cfg := DefaultTestnet()
		cfg.Network = network
		return cfg
	}
}
