// Package engine implements the Paced Submission Engine: a single owning
// goroutine that drives a select loop over a pacing ticker, a stream of
// completed submissions, and a stats ticker, the same shape
// asianhawk-lnd/sweep.UtxoSweeper's collector method uses for its own
// timer/completion/quit select loop.
package engine

import (
	"context"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/util"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/ledger"
	txlog "github.com/kaspa-tools/txgen/internal/log"
	"github.com/kaspa-tools/txgen/internal/txbuilder"
)

var log = btclog.Disabled

func init() { txlog.Register("ENGN", func(l btclog.Logger) { log = l }) }

// safetyCapTPS is the ceiling applied to the target rate unless the
// operator has explicitly opted into running unleashed.
const safetyCapTPS = 100

// NodeClient is the subset of the node adapter the engine dispatches
// submissions and mempool-size polls to. Defined here, rather than reused
// from nodeclient, so this package stays decoupled from that one's
// connection-management concerns — it only needs these two calls.
type NodeClient interface {
	SubmitTransaction(ctx context.Context, tx *externalapi.DomainTransaction, allowOrphan bool) error
	MempoolSize(ctx context.Context) (int, error)
}

// Params configures one run of the engine.
type Params struct {
	TargetTPS       uint64
	Unleashed       bool
	MillisPerTick   uint64
	BaseFeeRate     uint64
	MinChangeSompi  uint64
	MaxInflight     int
	MaxPendingAge   time.Duration
	DurationSeconds uint64
}

// completion is what a submission goroutine reports back to the collector
// loop once the node has accepted or rejected a transaction.
type completion struct {
	outpoint kaspa.Outpoint
	err      error
}

// Engine owns the ledger mirror, the client round-robin, and every piece of
// pacing state for the lifetime of one Run call. It is not safe for
// concurrent use — like the mirror it drives, it assumes a single owning
// goroutine.
type Engine struct {
	clients     []NodeClient
	key         *kaspa.KeyPair
	addr        util.Address
	mirror      *ledger.Mirror
	params      Params
	rrIndex     int
	inflight    int
	tpsReporter *tpsReporter
}

// New constructs an Engine ready to Run. mirror must already be seeded with
// an initial UTXO set (see internal/ledger.New).
func New(clients []NodeClient, key *kaspa.KeyPair, addr util.Address, mirror *ledger.Mirror, params Params) *Engine {
	return &Engine{
		clients:     clients,
		key:         key,
		addr:        addr,
		mirror:      mirror,
		params:      params,
		tpsReporter: newTPSReporter(),
	}
}

// Run drives the pacing loop until ctx is cancelled or DurationSeconds
// elapses (0 means run until cancelled). It returns ctx.Err() on
// cancellation, and nil on completing its configured duration.
func (e *Engine) Run(ctx context.Context, fetch ledger.Fetcher) error {
	effectiveTPS := e.params.TargetTPS
	if !e.params.Unleashed && effectiveTPS > safetyCapTPS {
		effectiveTPS = safetyCapTPS
		log.Warnf("safety cap active: limiting tps to %d (set unleashed=true to remove)", safetyCapTPS)
	}

	targetPerTick := float64(effectiveTPS) * float64(e.params.MillisPerTick) / 1000.0
	var carry float64

	tickInterval := time.Duration(e.params.MillisPerTick) * time.Millisecond
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(time.Second)
	defer statsTicker.Stop()

	completions := make(chan completion, e.params.MaxInflight+1)

	start := time.Now()
	statsStart := time.Now()
	var sentSinceReset uint64

	go e.tpsReporter.run(ctx)

	log.Infof("starting spam loop: %d tps target (%d ms tick), %d utxos available",
		effectiveTPS, e.params.MillisPerTick, e.mirror.AvailableCount())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case c := <-completions:
			e.inflight--
			if c.err != nil {
				e.mirror.Release(c.outpoint)
				log.Debugf("transaction submission failed: %v", c.err)
				continue
			}
			e.mirror.MarkSpent(c.outpoint)
			sentSinceReset++
			e.tpsReporter.record(1)

		case <-statsTicker.C:
			mempoolSize := 0
			if len(e.clients) > 0 {
				if n, err := e.clients[0].MempoolSize(ctx); err == nil {
					mempoolSize = n
				}
			}
			elapsed := time.Since(statsStart).Seconds()
			tps := 0.0
			if elapsed > 0 {
				tps = float64(sentSinceReset) / elapsed
			}
			log.Infof("tps: %.1f | sent: %d | mempool: %d | inflight: %d | pending: %d | available: %d | runtime: %ds",
				tps, sentSinceReset, mempoolSize, e.inflight, e.mirror.PendingCount(), e.mirror.AvailableCount(),
				int(time.Since(start).Seconds()))
			statsStart = time.Now()
			sentSinceReset = 0

		case <-ticker.C:
			if e.params.DurationSeconds > 0 && time.Since(start).Seconds() >= float64(e.params.DurationSeconds) {
				log.Infof("spam duration completed after %d seconds", e.params.DurationSeconds)
				return nil
			}

			if e.mirror.NeedsRefresh() {
				if err := e.mirror.Refresh(ctx, fetch); err != nil {
					log.Warnf("failed to refresh utxos: %v", err)
				}
			}

			if e.mirror.AvailableCount() == 0 {
				log.Debugf("no utxos available, waiting for refresh")
				continue
			}
			if e.inflight >= e.params.MaxInflight {
				log.Debugf("inflight queue full (%d/%d)", e.inflight, e.params.MaxInflight)
				continue
			}

			toSend := int(targetPerTick + carry)
			carry = (targetPerTick + carry) - float64(toSend)

			if avail := e.mirror.AvailableCount(); toSend > avail {
				toSend = avail
			}
			if room := e.params.MaxInflight - e.inflight; toSend > room {
				toSend = room
			}
			if toSend <= 0 {
				continue
			}

			batch := e.mirror.GetBatch(toSend)
			e.mirror.Reserve(batch)

			jobs := buildSpamTransactions(batch, e.key, e.addr, txbuilder.Fee(e.params.BaseFeeRate), e.params.MinChangeSompi)

			for _, job := range jobs {
				client := e.nextClient()
				e.inflight++
				go func(job spamJob) {
					if log.Level() <= btclog.LevelTrace {
						log.Tracef("submitting transaction: %s", spew.Sdump(job.tx))
					}
					err := client.SubmitTransaction(ctx, job.tx, false)
					completions <- completion{outpoint: job.outpoint, err: err}
				}(job)
			}

			e.mirror.PruneOldPending(e.params.MaxPendingAge)
		}
	}
}

func (e *Engine) nextClient() NodeClient {
	c := e.clients[e.rrIndex%len(e.clients)]
	e.rrIndex++
	return c
}
