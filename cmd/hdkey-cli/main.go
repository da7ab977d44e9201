// hdkey-cli is a command-line client for mnemonics, HD keys and wallets.
// It works against a local keystore or, with --remote, a running hdkeyd.
package main

import (
	"os"

	"github.com/Klingon-tech/klingnet-hd/cmd/hdkey-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
