// HD key service daemon.
//
// Usage:
//
//	hdkeyd [--testnet --rpc-port=...]  Run the key service
//	hdkeyd --help                      Show help
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/klingnet-hd/config"
	"github.com/Klingon-tech/klingnet-hd/internal/daemon"
	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flags.Version {
		fmt.Printf("hdkeyd %s\n", version)
		return
	}

	d, err := daemon.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		d.Stop()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	d.Stop()
}
