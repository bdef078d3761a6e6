// Package orchestrator sequences a full run: load the signing key, derive
// the address, open the RPC connection pool, verify the node and address
// agree on a network, fetch the current UTXO set, split it if it falls
// short of the configured target, and hand off to the paced submission
// engine — the same top-to-bottom sequence original_source/src/main.rs's
// main function runs, broken into named phases here.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/kaspanet/kaspad/util"

	"github.com/kaspa-tools/txgen/internal/config"
	"github.com/kaspa-tools/txgen/internal/engine"
	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/kerrors"
	"github.com/kaspa-tools/txgen/internal/ledger"
	txlog "github.com/kaspa-tools/txgen/internal/log"
	"github.com/kaspa-tools/txgen/internal/nodeclient"
	"github.com/kaspa-tools/txgen/internal/splitter"
)

var log = btclog.Disabled

func init() { txlog.Register("ORCH", func(l btclog.Logger) { log = l }) }

// minSplittableKAS is the floor, in whole KAS, the largest available UTXO
// must clear before the splitting phase will attempt to fan it out.
const minSplittableKAS = 10

// Run executes one full end-to-end session against the given configuration
// and private key. It blocks until the submission engine stops (duration
// elapsed, or ctx cancelled) or an earlier phase fails.
func Run(ctx context.Context, cfg config.Config, privateKeyHex string) error {
	key, err := kaspa.NewKeyPairFromHex(privateKeyHex)
	if err != nil {
		return err
	}

	network, err := cfg.ResolveNetwork()
	if err != nil {
		return err
	}

	addr, err := key.Address(network)
	if err != nil {
		return fmt.Errorf("derive address: %w", err)
	}

	if !kaspa.AddressPrefixMatches(addr, network) {
		return fmt.Errorf("%w: address %s does not match network %s", kerrors.ErrNetworkMismatch, addr, network)
	}

	rpcURL := cfg.RPCEndpoint(network)
	log.Infof("connecting to %s at %s", network.ExpectedHint(), rpcURL)

	pool, err := nodeclient.DialPool(ctx, rpcURL, cfg.Advanced.ClientPoolSize)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrRPCTransport, err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warnf("error closing connection pool: %v", err)
		}
	}()

	if err := verifyNetwork(ctx, pool.Primary(), network); err != nil {
		return err
	}

	fetch := func(ctx context.Context) ([]kaspa.UtxoRecord, error) {
		return pool.Primary().FetchUTXOs(ctx, addr.String(), cfg.Advanced.CoinbaseMaturity, cfg.Advanced.ConfirmationDepth)
	}

	log.Infof("=== utxo analysis ===")
	utxos, err := fetch(ctx)
	if err != nil {
		return err
	}

	var totalBalance uint64
	for _, u := range utxos {
		totalBalance += u.Entry.Amount
	}
	log.Infof("current utxos: %d, total balance: %d KAS", len(utxos), totalBalance/100_000_000)

	if len(utxos) < cfg.UTXO.TargetUTXOCount {
		if err := runSplittingPhase(ctx, pool, key, addr, utxos, cfg); err != nil {
			log.Warnf("splitting phase failed, continuing spam phase with existing utxos: %v", err)
		} else {
			refreshed, ferr := fetch(ctx)
			if ferr != nil {
				return ferr
			}
			utxos = refreshed
		}
	} else {
		log.Infof("already have %d utxos (target %d), skipping splitting phase", len(utxos), cfg.UTXO.TargetUTXOCount)
	}

	log.Infof("=== transaction spam ===")
	mirror := ledger.New(utxos, time.Duration(cfg.UTXO.RefreshIntervalSecs)*time.Second)

	clients := make([]engine.NodeClient, 0, pool.Size())
	for _, c := range pool.All() {
		clients = append(clients, c)
	}

	e := engine.New(clients, key, addr, mirror, engine.Params{
		TargetTPS:       cfg.Spam.TargetTPS,
		Unleashed:       cfg.Spam.Unleashed,
		MillisPerTick:   cfg.Spam.MillisPerTick,
		BaseFeeRate:     cfg.Fees.BaseFeeRate,
		MinChangeSompi:  cfg.UTXO.MinChangeSompi,
		MaxInflight:     cfg.Advanced.MaxInflight,
		MaxPendingAge:   time.Duration(cfg.Advanced.MaxPendingAgeSecs) * time.Second,
		DurationSeconds: cfg.Spam.DurationSeconds,
	})

	err = e.Run(ctx, fetch)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func runSplittingPhase(
	ctx context.Context,
	pool *nodeclient.Pool,
	key *kaspa.KeyPair,
	addr util.Address,
	utxos []kaspa.UtxoRecord,
	cfg config.Config,
) error {
	log.Infof("=== utxo splitting ===")
	log.Infof("need to create %d more utxos", cfg.UTXO.TargetUTXOCount-len(utxos))

	var largest kaspa.UtxoRecord
	for _, u := range utxos {
		if u.Entry.Amount > largest.Entry.Amount {
			largest = u
		}
	}

	kasAmount := largest.Entry.Amount / 100_000_000
	if kasAmount < minSplittableKAS {
		return fmt.Errorf("%w: largest utxo has %d kas, more is needed", kerrors.ErrInsufficientFunds, kasAmount)
	}

	created, err := splitter.Plan(ctx, pool.Primary(), key, addr, largest, splitter.Params{
		TargetUTXOCount:  cfg.UTXO.TargetUTXOCount,
		AmountPerOutput:  cfg.UTXO.AmountPerUTXO,
		OutputsPerTx:     cfg.UTXO.OutputsPerTransaction,
		SplittingFeeRate: cfg.Fees.SplittingFeeRate,
		MinChangeSompi:   cfg.UTXO.MinChangeSompi,
	})
	if err != nil {
		return err
	}
	log.Infof("created %d splitting transactions, waiting for confirmations", created)
	return nil
}

func verifyNetwork(ctx context.Context, client *nodeclient.Client, network kaspa.Network) error {
	info, err := client.ServerInfo(ctx)
	if err != nil {
		return err
	}

	networkID := strings.ToLower(info.NetworkID)
	hint := network.ExpectedHint()
	if !strings.Contains(networkID, hint) {
		return fmt.Errorf("%w: node reports %q, expected to contain %q", kerrors.ErrNodeNetworkMismatch, networkID, hint)
	}

	log.Infof("network verification successful: %s (daa score: %d)", networkID, info.VirtualDAAScore)
	return nil
}
