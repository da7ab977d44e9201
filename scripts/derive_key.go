// derive_key.go prints the key and fingerprint at a path below a root read
// from a file. The file holds a hex seed or a serialized xprv/xpub.
// Usage: go run scripts/derive_key.go <rootfile> [path]
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
)

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run keeps all key material behind defers so it is wiped before main exits.
func run(args []string, w io.Writer) error {
	if len(args) < 2 {
		return errors.New("usage: derive_key <rootfile> [path]")
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	defer crypto.Zero(data)
	path := "m"
	if len(args) > 2 {
		path = args[2]
	}

	text := strings.TrimSpace(string(data))
	var root *hdkey.HDKey
	if seed, decErr := hex.DecodeString(text); decErr == nil {
		root, err = hdkey.NewRootKey(seed, network.MainNet())
		crypto.Zero(seed)
	} else {
		root, err = hdkey.ParseExtendedKey(text)
	}
	if err != nil {
		return err
	}
	defer root.Zero()

	key, err := root.Extend(hdkey.Derivation(path))
	if err != nil {
		return err
	}
	defer key.Zero()

	fmt.Fprintf(w, "path=%s\n", path)
	fmt.Fprintf(w, "pubkey=%s\n", hex.EncodeToString(key.PublicKey()))
	fmt.Fprintf(w, "fingerprint=%08x\n", key.Fingerprint())
	fmt.Fprintf(w, "xpub=%s\n", key.ExtendedPublicKey())
	return nil
}
