// Package daemon wires configuration, logging, the keystore database and the
// RPC server into one service that can be embedded in any binary.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Klingon-tech/klingnet-hd/config"
	klog "github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/internal/rpc"
	"github.com/Klingon-tech/klingnet-hd/internal/storage"
	"github.com/Klingon-tech/klingnet-hd/internal/wallet"
	"github.com/rs/zerolog"
)

// Daemon is a fully-initialized key service.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	db        storage.DB
	keystore  *wallet.Keystore
	rpcServer *rpc.Server

	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates and initializes a Daemon. It sets up logging, opens the
// keystore database and binds the RPC listener, but does not serve until
// Start is called.
func New(cfg *config.Config) (*Daemon, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0700); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "hdkeyd.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("daemon")

	net, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("network", net.Key()).
		Str("language", cfg.Mnemonic.Language).
		Int("entropy_bits", cfg.Mnemonic.EntropyBits).
		Str("path", cfg.Derivation.DefaultPath).
		Msg("Starting HD key service")

	// ── 2. Open keystore ────────────────────────────────────────────
	dir := expandHome(cfg.KeystoreDir())
	if cfg.Keystore.Ephemeral {
		dir = "memory"
	}
	db, err := storage.OpenKeystore(dir, cfg.Keystore.Ephemeral)
	if err != nil {
		return nil, fmt.Errorf("open keystore at %s: %w", dir, err)
	}
	params := wallet.EncryptionParams{
		Memory:      cfg.Keystore.Memory,
		Iterations:  cfg.Keystore.Iterations,
		Parallelism: cfg.Keystore.Parallelism,
	}
	if err := params.Validate(); err != nil {
		db.Close()
		return nil, err
	}
	ks := wallet.NewKeystore(db, params)
	logger.Info().Str("path", dir).Bool("ephemeral", cfg.Keystore.Ephemeral).Msg("Keystore opened")

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		keystore: ks,
		ctx:      ctx,
		cancel:   cancel,
	}

	// ── 3. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		defaults, err := rpc.DefaultsFromConfig(cfg)
		if err != nil {
			d.Stop()
			return nil, err
		}
		d.rpcServer = rpc.New(cfg.RPC.Endpoint(), defaults, cfg.RPC)
		d.rpcServer.SetKeystore(ks)
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return d, nil
}

// Start begins serving RPC requests.
func (d *Daemon) Start() error {
	if d.rpcServer != nil {
		if err := d.rpcServer.Start(); err != nil {
			return fmt.Errorf("start RPC at %s: %w", d.cfg.RPC.Endpoint(), err)
		}
	}
	d.logger.Info().Str("rpc", d.RPCAddr()).Msg("HD key service started")
	return nil
}

// Done is closed when Stop is called.
func (d *Daemon) Done() <-chan struct{} {
	return d.ctx.Done()
}

// Stop shuts the service down in reverse order. It is safe to call more
// than once.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		d.cancel()
		if d.rpcServer != nil {
			if err := d.rpcServer.Stop(); err != nil {
				d.logger.Warn().Err(err).Msg("RPC shutdown")
			}
		}
		if d.db != nil {
			if err := d.db.Close(); err != nil {
				d.logger.Warn().Err(err).Msg("Keystore close")
			}
		}
		d.logger.Info().Msg("Goodbye!")
	})
}

// RPCAddr returns the address the RPC server is listening on.
func (d *Daemon) RPCAddr() string {
	if d.rpcServer == nil {
		return ""
	}
	return d.rpcServer.Addr()
}

// Keystore returns the wallet keystore.
func (d *Daemon) Keystore() *wallet.Keystore {
	return d.keystore
}
