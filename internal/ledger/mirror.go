// Package ledger implements the UTXO Ledger Mirror: the single
// authoritative local view of which outpoints are available, reserved
// in-flight (pending), or known accepted by the node (spent). It is owned
// exclusively by the submission engine's goroutine — every method here
// assumes single-threaded access, the same assumption
// asianhawk-lnd/sweep.UtxoSweeper makes about its own pendingInputs map.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/btcsuite/btclog"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	txlog "github.com/kaspa-tools/txgen/internal/log"
)

var log = btclog.Disabled

func init() { txlog.Register("LDGR", func(l btclog.Logger) { log = l }) }

// nearExhaustionMargin is how close to the end of Available triggers an
// eager refresh, even before the refresh interval elapses.
const nearExhaustionMargin = 8

// Fetcher queries the node for the current spendable set. It is injected so
// that Mirror has no dependency on the node adapter's concrete type.
type Fetcher func(ctx context.Context) ([]kaspa.UtxoRecord, error)

// Mirror is the local view of the wallet's outpoints, partitioned into
// Available, Pending, and Spent.
type Mirror struct {
	available []kaspa.UtxoRecord
	index     int

	pending map[kaspa.Outpoint]time.Time
	spent   map[kaspa.Outpoint]struct{}

	lastRefresh     time.Time
	refreshInterval time.Duration
}

// New seeds a Mirror with an already-largest-first-sorted initial set.
func New(initial []kaspa.UtxoRecord, refreshInterval time.Duration) *Mirror {
	m := &Mirror{
		available:       initial,
		pending:         make(map[kaspa.Outpoint]time.Time),
		spent:           make(map[kaspa.Outpoint]struct{}),
		lastRefresh:     time.Now(),
		refreshInterval: refreshInterval,
	}
	log.Infof("initialized ledger mirror with %d utxos", len(initial))
	return m
}

// NeedsRefresh reports whether the mirror is stale: either the refresh
// interval has elapsed, or the consumption cursor is within
// nearExhaustionMargin records of the end of Available.
func (m *Mirror) NeedsRefresh() bool {
	if time.Since(m.lastRefresh) >= m.refreshInterval {
		return true
	}
	remaining := len(m.available) - m.index
	return remaining <= nearExhaustionMargin
}

// Refresh queries fetch for the node's current spendable set, filters out
// anything still Pending or already Spent, and replaces Available
// wholesale. It does not touch Pending or Spent (I1/I2 hold at the moment
// this returns: the filtered result is disjoint from both by construction).
func (m *Mirror) Refresh(ctx context.Context, fetch Fetcher) error {
	fresh, err := fetch(ctx)
	if err != nil {
		return err
	}

	filtered := fresh[:0:0]
	for _, rec := range fresh {
		if _, isPending := m.pending[rec.Outpoint]; isPending {
			continue
		}
		if _, isSpent := m.spent[rec.Outpoint]; isSpent {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Entry.Amount > filtered[j].Entry.Amount
	})

	oldCount := len(m.available) - m.index
	m.available = filtered
	m.index = 0
	m.lastRefresh = time.Now()

	log.Infof("refreshed utxos: %d available (was %d), %d pending, %d spent",
		len(m.available), oldCount, len(m.pending), len(m.spent))

	return nil
}

// GetBatch returns up to n unreserved records starting at the cursor,
// advancing the cursor by however many were returned.
func (m *Mirror) GetBatch(n int) []kaspa.UtxoRecord {
	remaining := len(m.available) - m.index
	if n > remaining {
		n = remaining
	}
	if n <= 0 {
		return nil
	}

	batch := m.available[m.index : m.index+n]
	m.index += n
	return batch
}

// Reserve inserts every outpoint in batch into Pending with the current
// timestamp. Callers must reserve the entire batch GetBatch returned, even
// records the builder later decides to skip as dust — reservation tracks
// consumption from Available, not only submission attempts.
func (m *Mirror) Reserve(batch []kaspa.UtxoRecord) {
	now := time.Now()
	for _, rec := range batch {
		m.pending[rec.Outpoint] = now
	}
}

// MarkSpent moves an outpoint from Pending to the permanent Spent set.
func (m *Mirror) MarkSpent(op kaspa.Outpoint) {
	delete(m.pending, op)
	m.spent[op] = struct{}{}
}

// Release removes an outpoint from Pending without marking it spent,
// making it eligible to reappear in Available on the next refresh that
// still observes it unspent on the node.
func (m *Mirror) Release(op kaspa.Outpoint) {
	delete(m.pending, op)
}

// PruneOldPending removes Pending entries older than maxAge, bounding
// memory growth if a submission's completion is somehow never observed.
func (m *Mirror) PruneOldPending(maxAge time.Duration) {
	now := time.Now()
	pruned := 0
	for op, t := range m.pending {
		if now.Sub(t) > maxAge {
			delete(m.pending, op)
			pruned++
		}
	}
	if pruned > 0 {
		log.Debugf("pruned %d stale pending utxos", pruned)
	}
}

// AvailableCount returns the number of unreserved records left in
// Available.
func (m *Mirror) AvailableCount() int {
	return len(m.available) - m.index
}

// PendingCount returns the current size of the Pending set.
func (m *Mirror) PendingCount() int {
	return len(m.pending)
}

// SpentCount returns the current size of the Spent set.
func (m *Mirror) SpentCount() int {
	return len(m.spent)
}

// TotalBalance sums the amount of every record remaining in Available,
// including already-reserved ones.
func (m *Mirror) TotalBalance() uint64 {
	var total uint64
	for _, rec := range m.available {
		total += rec.Entry.Amount
	}
	return total
}

// Largest returns the highest-amount record in Available, used by the
// splitting planner to pick its source UTXO. Available is kept sorted
// descending, so this is simply the first record at or after the cursor.
func (m *Mirror) Largest() (kaspa.UtxoRecord, bool) {
	if m.AvailableCount() == 0 {
		return kaspa.UtxoRecord{}, false
	}
	return m.available[m.index], true
}
