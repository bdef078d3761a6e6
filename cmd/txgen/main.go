// Command txgen drives a Kaspa UTXO-splitting and transaction-spam session
// against a configured node: it parses flags, loads and merges
// configuration, wires up logging, then delegates everything else to
// internal/orchestrator.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/kaspa-tools/txgen/internal/config"
	txlog "github.com/kaspa-tools/txgen/internal/log"
	"github.com/kaspa-tools/txgen/internal/orchestrator"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli, err := config.ParseCli(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, privateKeyHex, err := config.Load(cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	backend, err := setupLogging(cfg.Logging.LogFile, cfg.Logging.Level, cfg.Logging.Timestamps)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_ = backend

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := orchestrator.Run(ctx, cfg, privateKeyHex); err != nil {
		txlog.Log().Errorf("fatal: %v", err)
		return 1
	}

	return 0
}
