package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-hd/config"
	klog "github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/internal/rpc"
	"github.com/Klingon-tech/klingnet-hd/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-hd/internal/storage"
	"github.com/Klingon-tech/klingnet-hd/internal/wallet"
)

// caller is satisfied by rpcclient.Client and rpc.Server.
type caller interface {
	Call(method string, params, result interface{}) error
}

type invoker struct{ srv *rpc.Server }

func (i invoker) Call(method string, params, result interface{}) error {
	return i.srv.Invoke(method, params, result)
}

// session carries per-invocation state shared by all commands.
type session struct {
	flags    *config.Flags
	cfg      *config.Config
	remote   string
	jsonOut  bool
	password string

	backend caller
	local   *rpc.Server
	db      storage.DB
}

func (s *session) setup() error {
	cfg, err := config.LoadWithFlags(s.flags)
	if err != nil {
		return err
	}
	s.cfg = cfg

	level := "warn"
	if s.flags.LogLevel != "" {
		level = s.flags.LogLevel
	}
	if err := klog.Init(level, cfg.Log.JSON, s.flags.LogFile); err != nil {
		return err
	}

	if s.remote != "" {
		s.backend = rpcclient.New(s.remote)
		return nil
	}
	defaults, err := rpc.DefaultsFromConfig(cfg)
	if err != nil {
		return err
	}
	s.local = rpc.New("", defaults)
	s.backend = invoker{s.local}
	return nil
}

// openKeystore attaches the on-disk keystore to the local backend. Remote
// sessions use the daemon's keystore.
func (s *session) openKeystore() error {
	if s.local == nil || s.db != nil {
		return nil
	}
	db, err := storage.OpenKeystore(s.cfg.KeystoreDir(), s.cfg.Keystore.Ephemeral)
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}
	s.db = db
	s.local.SetKeystore(wallet.NewKeystore(db, wallet.EncryptionParams{
		Memory:      s.cfg.Keystore.Memory,
		Iterations:  s.cfg.Keystore.Iterations,
		Parallelism: s.cfg.Keystore.Parallelism,
	}))
	return nil
}

func (s *session) close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// network returns the network named on the command line, or "" to let the
// backend apply its default.
func (s *session) network() string {
	if s.flags.Testnet {
		return config.Testnet
	}
	return s.flags.Network
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "hdkey-cli",
		Short:         "BIP39 mnemonics, BIP32 keys and HD wallets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup()
		},
	}

	s.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&s.remote, "remote", "", "hdkeyd RPC endpoint (e.g. http://127.0.0.1:8745); local keystore when empty")
	root.PersistentFlags().BoolVar(&s.jsonOut, "json", false, "Print raw JSON results")

	root.AddCommand(mnemonicCmd(s), keyCmd(s), walletCmd(s))
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	s := &session{}
	defer s.close()
	err := newRootCmd(s).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
