package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-hd/internal/rpc"
)

func keyCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Derive and inspect BIP32 extended keys",
	}
	cmd.AddCommand(keyDeriveCmd(s), keyDecodeCmd(s))
	return cmd
}

func printKey(w io.Writer, k *rpc.KeyResult) {
	if k.Path != "" {
		fmt.Fprintf(w, "Path:               %s\n", k.Path)
	}
	fmt.Fprintf(w, "Network:            %s\n", k.Network)
	fmt.Fprintf(w, "Depth:              %d\n", k.Depth)
	fmt.Fprintf(w, "Index:              %d (hardened: %t)\n", k.Index, k.Hardened)
	fmt.Fprintf(w, "Fingerprint:        %s\n", k.Fingerprint)
	fmt.Fprintf(w, "Parent fingerprint: %s\n", k.ParentFingerprint)
	fmt.Fprintf(w, "Chain code:         %s\n", k.ChainCode)
	fmt.Fprintf(w, "Public key:         %s\n", k.PublicKey)
	fmt.Fprintf(w, "Extended public:    %s\n", k.XPub)
	if k.XPrv != "" {
		fmt.Fprintf(w, "Extended private:   %s\n", k.XPrv)
	}
}

func keyDeriveCmd(s *session) *cobra.Command {
	var p rpc.DeriveParam
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the node at --path from a mnemonic, seed or extended key",
		Long: "Derive the node at --path. Exactly one of --phrase, --seed or --key selects the root;\n" +
			"an xpub root can only follow non-hardened steps.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Network = s.network()
			p.Path = s.flags.DerivationPath
			var result rpc.KeyResult
			if err := s.backend.Call("hdkey_derive", p, &result); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printKey(cmd.OutOrStdout(), &result)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Phrase, "phrase", "", "BIP39 mnemonic")
	cmd.Flags().StringVar(&p.Passphrase, "passphrase", "", "BIP39 passphrase used with --phrase")
	cmd.Flags().StringVar(&p.Seed, "seed", "", "Hex seed (16 to 64 bytes)")
	cmd.Flags().StringVar(&p.Key, "key", "", "Serialized xprv or xpub")
	cmd.Flags().BoolVar(&p.Public, "public", false, "Omit the extended private key")
	cmd.MarkFlagsMutuallyExclusive("phrase", "seed", "key")
	cmd.MarkFlagsOneRequired("phrase", "seed", "key")
	return cmd
}

func keyDecodeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <xprv|xpub>",
		Short: "Decode a serialized extended key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result rpc.KeyResult
			if err := s.backend.Call("hdkey_decode", rpc.DecodeParam{Key: args[0]}, &result); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printKey(cmd.OutOrStdout(), &result)
			return nil
		},
	}
}
