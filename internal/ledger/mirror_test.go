package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/stretchr/testify/require"

	"github.com/kaspa-tools/txgen/internal/kaspa"
)

func makeRecord(txIDByte byte, index uint32, amount uint64) kaspa.UtxoRecord {
	var txID externalapi.DomainTransactionID
	txID[0] = txIDByte
	return kaspa.UtxoRecord{
		Outpoint: kaspa.Outpoint{TransactionID: txID, Index: index},
		Entry:    kaspa.UtxoEntry{Amount: amount},
	}
}

func TestGetBatchAdvancesCursorAndIsDisjointFromReserve(t *testing.T) {
	recs := []kaspa.UtxoRecord{
		makeRecord(1, 0, 300),
		makeRecord(2, 0, 200),
		makeRecord(3, 0, 100),
	}
	m := New(recs, time.Hour)

	batch := m.GetBatch(2)
	require.Len(t, batch, 2)
	require.Equal(t, 1, m.AvailableCount())

	m.Reserve(batch)
	require.Equal(t, 2, m.PendingCount())

	rest := m.GetBatch(10)
	require.Len(t, rest, 1)
	require.Equal(t, 0, m.AvailableCount())
}

func TestMarkSpentMovesFromPendingToSpentExclusively(t *testing.T) {
	recs := []kaspa.UtxoRecord{makeRecord(1, 0, 100)}
	m := New(recs, time.Hour)

	batch := m.GetBatch(1)
	m.Reserve(batch)
	require.Equal(t, 1, m.PendingCount())

	op := batch[0].Outpoint
	m.MarkSpent(op)

	require.Equal(t, 0, m.PendingCount())
	require.Equal(t, 1, m.SpentCount())
	_, stillPending := m.pending[op]
	require.False(t, stillPending)
}

func TestReleasePutsOutpointBackToNeitherSet(t *testing.T) {
	recs := []kaspa.UtxoRecord{makeRecord(1, 0, 100)}
	m := New(recs, time.Hour)

	batch := m.GetBatch(1)
	m.Reserve(batch)
	m.Release(batch[0].Outpoint)

	require.Equal(t, 0, m.PendingCount())
	require.Equal(t, 0, m.SpentCount())
}

func TestRefreshExcludesPendingAndSpent(t *testing.T) {
	pendingRec := makeRecord(1, 0, 500)
	spentRec := makeRecord(2, 0, 400)
	freshRec := makeRecord(3, 0, 300)

	m := New([]kaspa.UtxoRecord{pendingRec, spentRec}, time.Hour)

	batch := m.GetBatch(2)
	m.Reserve(batch)
	m.MarkSpent(spentRec.Outpoint)
	m.Release(pendingRec.Outpoint)
	// re-reserve pendingRec to exercise the pending-exclusion branch
	m.Reserve([]kaspa.UtxoRecord{pendingRec})

	fetch := func(ctx context.Context) ([]kaspa.UtxoRecord, error) {
		return []kaspa.UtxoRecord{pendingRec, spentRec, freshRec}, nil
	}

	err := m.Refresh(context.Background(), fetch)
	require.NoError(t, err)

	require.Equal(t, 1, m.AvailableCount())
	rec, ok := m.Largest()
	require.True(t, ok)
	require.Equal(t, freshRec.Outpoint, rec.Outpoint)
}

func TestRefreshPropagatesFetchError(t *testing.T) {
	m := New(nil, time.Hour)
	boom := errors.New("boom")
	err := m.Refresh(context.Background(), func(ctx context.Context) ([]kaspa.UtxoRecord, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestNeedsRefreshOnIntervalOrNearExhaustion(t *testing.T) {
	m := New(nil, time.Millisecond)
	time.Sleep(2 * time.Millisecond)
	require.True(t, m.NeedsRefresh())

	recs := make([]kaspa.UtxoRecord, 5)
	for i := range recs {
		recs[i] = makeRecord(byte(i+1), 0, 100)
	}
	m2 := New(recs, time.Hour)
	require.True(t, m2.NeedsRefresh())

	recs2 := make([]kaspa.UtxoRecord, 50)
	for i := range recs2 {
		recs2[i] = makeRecord(byte(i+1), 0, 100)
	}
	m3 := New(recs2, time.Hour)
	require.False(t, m3.NeedsRefresh())
}

func TestPruneOldPendingRemovesOnlyStaleEntries(t *testing.T) {
	m := New(nil, time.Hour)
	stale := kaspa.Outpoint{Index: 1}
	fresh := kaspa.Outpoint{Index: 2}

	m.pending[stale] = time.Now().Add(-time.Hour)
	m.pending[fresh] = time.Now()

	m.PruneOldPending(time.Minute)

	_, staleStillThere := m.pending[stale]
	_, freshStillThere := m.pending[fresh]
	require.False(t, staleStillThere)
	require.True(t, freshStillThere)
}
