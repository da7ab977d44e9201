package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-hd/internal/rpc"
)

func mnemonicCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate, validate and stretch BIP39 mnemonics",
	}
	cmd.AddCommand(
		mnemonicLanguagesCmd(s),
		mnemonicWordsCmd(s),
		mnemonicGenerateCmd(s),
		mnemonicEncodeCmd(s),
		mnemonicValidateCmd(s),
		mnemonicSeedCmd(s),
	)
	return cmd
}

func mnemonicLanguagesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported wordlist languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result rpc.LanguagesResult
			if err := s.backend.Call("mnemonic_getLanguages", nil, &result); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			for _, lang := range result.Languages {
				marker := ""
				if lang == result.Default {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", lang, marker)
			}
			return nil
		},
	}
}

func mnemonicWordsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "Print the wordlist of --language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result rpc.WordsResult
			if err := s.backend.Call("mnemonic_getWords", rpc.LanguageParam{Language: s.flags.Language}, &result); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			for _, w := range result.Words {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		},
	}
}

func printMnemonic(cmd *cobra.Command, s *session, result *rpc.MnemonicResult) error {
	if s.jsonOut {
		return printJSON(cmd.OutOrStdout(), result)
	}
	if result.Status != rpc.StatusOK {
		return fmt.Errorf("mnemonic: %s", result.StatusName)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Phrase)
	return nil
}

func mnemonicGenerateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a random mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result rpc.MnemonicResult
			err := s.backend.Call("mnemonic_generate", rpc.GenerateParam{
				Language:    s.flags.Language,
				EntropyBits: s.flags.EntropyBits,
			}, &result)
			if err != nil {
				return err
			}
			return printMnemonic(cmd, s, &result)
		},
	}
}

func mnemonicEncodeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <entropy-hex>",
		Short: "Encode caller-supplied entropy as a mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := hex.DecodeString(args[0]); err != nil {
				return fmt.Errorf("entropy must be hex: %w", err)
			}
			var result rpc.MnemonicResult
			err := s.backend.Call("mnemonic_encodeBytes", rpc.EncodeBytesParam{
				Entropy:     args[0],
				Language:    s.flags.Language,
				EntropyBits: s.flags.EntropyBits,
			}, &result)
			if err != nil {
				return err
			}
			return printMnemonic(cmd, s, &result)
		},
	}
}

func mnemonicValidateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <word>...",
		Short: "Check a mnemonic's words and checksum",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result rpc.ValidateResult
			err := s.backend.Call("mnemonic_validate", rpc.ValidateParam{
				Phrase:   strings.Join(args, " "),
				Language: s.flags.Language,
			}, &result)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			if !result.Valid {
				return fmt.Errorf("invalid mnemonic")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func mnemonicSeedCmd(s *session) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "seed <word>...",
		Short: "Stretch a mnemonic into a 64-byte seed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result rpc.SeedResult
			err := s.backend.Call("mnemonic_toSeed", rpc.ToSeedParam{
				Phrase:     strings.Join(args, " "),
				Passphrase: passphrase,
			}, &result)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Seed)
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Optional BIP39 passphrase")
	return cmd
}
