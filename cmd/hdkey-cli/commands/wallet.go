package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-hd/internal/rpc"
	"github.com/Klingon-tech/klingnet-hd/internal/wallet"
)

func walletCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage encrypted HD wallets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := s.setup(); err != nil {
				return err
			}
			return s.openKeystore()
		},
	}
	cmd.PersistentFlags().StringVar(&s.password, "password", "", "Keystore password (prompted when omitted)")
	cmd.AddCommand(
		walletCreateCmd(s),
		walletImportCmd(s),
		walletListCmd(s),
		walletAccountCmd(s),
		walletAccountsCmd(s),
	)
	return cmd
}

func printWallet(cmd *cobra.Command, info *wallet.Info) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wallet:   %s\n", info.Name)
	fmt.Fprintf(w, "ID:       %s\n", info.ID)
	fmt.Fprintf(w, "Network:  %s\n", info.Network)
	if info.Language != "" {
		fmt.Fprintf(w, "Language: %s\n", info.Language)
	}
}

func walletCreateCmd(s *session) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a wallet from a fresh mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := s.walletPassword(true)
			if err != nil {
				return err
			}
			var result rpc.WalletCreateResult
			err = s.backend.Call("wallet_create", rpc.WalletCreateParam{
				Name:        args[0],
				Password:    password,
				Passphrase:  passphrase,
				Language:    s.flags.Language,
				EntropyBits: s.flags.EntropyBits,
				Network:     s.network(),
			}, &result)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Mnemonic (write this down!):")
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n\n", result.Mnemonic)
			printWallet(cmd, result.Wallet)
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Optional BIP39 passphrase")
	return cmd
}

func walletImportCmd(s *session) *cobra.Command {
	var mnemonic, passphrase string
	cmd := &cobra.Command{
		Use:   "import <name>",
		Short: "Import a wallet from an existing mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := s.walletPassword(true)
			if err != nil {
				return err
			}
			var info wallet.Info
			err = s.backend.Call("wallet_import", rpc.WalletImportParam{
				Name:       args[0],
				Password:   password,
				Mnemonic:   mnemonic,
				Passphrase: passphrase,
				Language:   s.flags.Language,
				Network:    s.network(),
			}, &info)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), info)
			}
			printWallet(cmd, &info)
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "BIP39 mnemonic")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Optional BIP39 passphrase")
	cmd.MarkFlagRequired("mnemonic")
	return cmd
}

func walletListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []wallet.Info
			if err := s.backend.Call("wallet_list", nil, &list); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No wallets found.")
				return nil
			}
			for _, info := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s  %-8s %d account(s)\n",
					info.Name, info.ID, info.Network, info.Accounts)
			}
			return nil
		},
	}
}

func walletAccountCmd(s *session) *cobra.Command {
	var (
		label string
		coin  uint32
	)
	cmd := &cobra.Command{
		Use:   "account <name> [path]",
		Short: "Derive and record an account xpub",
		Long: "Derive the account at path and record its extended public key. Without a path\n" +
			"the next unused m/44'/coin'/n' account is taken.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := s.walletPassword(false)
			if err != nil {
				return err
			}
			p := rpc.WalletDeriveAccountParam{
				Name:     args[0],
				Password: password,
				Label:    label,
			}
			if len(args) == 2 {
				p.Path = args[1]
			}
			if cmd.Flags().Changed("coin") {
				p.Coin = &coin
			}
			var acct wallet.AccountEntry
			if err := s.backend.Call("wallet_deriveAccount", p, &acct); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), acct)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Path:        %s\n", acct.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %08x\n", acct.Fingerprint)
			fmt.Fprintf(cmd.OutOrStdout(), "XPub:        %s\n", acct.XPub)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Account label")
	cmd.Flags().Uint32Var(&coin, "coin", 0, "BIP44 coin type when no path is given (default from config)")
	return cmd
}

func walletAccountsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <name>",
		Short: "List a wallet's recorded accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var accounts []wallet.AccountEntry
			if err := s.backend.Call("wallet_listAccounts", rpc.WalletNameParam{Name: args[0]}, &accounts); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), accounts)
			}
			for _, a := range accounts {
				line := fmt.Sprintf("%-20s %s", a.Path, a.XPub)
				if a.Label != "" {
					line += "  " + a.Label
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(line, " "))
			}
			return nil
		},
	}
}
