package engine

import (
	"context"
	"crypto/sha256"
	"sync"
	"testing"
	"time"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/stretchr/testify/require"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/ledger"
)

type fakeClient struct {
	mu        sync.Mutex
	submitted int
}

func (f *fakeClient) SubmitTransaction(_ context.Context, _ *externalapi.DomainTransaction, allowOrphan bool) error {
	if allowOrphan {
		panic("spam submissions must not allow orphans")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted++
	return nil
}

func (f *fakeClient) MempoolSize(_ context.Context) (int, error) {
	return 0, nil
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}

func makeUtxoRecords(t *testing.T, n int, scriptPubKey *externalapi.ScriptPublicKey) []kaspa.UtxoRecord {
	t.Helper()
	recs := make([]kaspa.UtxoRecord, n)
	for i := 0; i < n; i++ {
		var txID externalapi.DomainTransactionID
		txID[0] = byte(i + 1)
		recs[i] = kaspa.UtxoRecord{
			Outpoint: kaspa.Outpoint{TransactionID: txID, Index: 0},
			Entry:    kaspa.UtxoEntry{Amount: 1_000_000_000, ScriptPublicKey: scriptPubKey},
		}
	}
	return recs
}

func TestRunSendsUntilContextDeadlineAndConservesCounts(t *testing.T) {
	seed := sha256.Sum256([]byte("engine-test-seed"))
	key, err := kaspa.NewKeyPairFromHex(hexEncode(seed[:]))
	require.NoError(t, err)
	addr, err := key.Address(kaspa.Mainnet)
	require.NoError(t, err)
	scriptPubKey, err := kaspa.ScriptPublicKey(addr)
	require.NoError(t, err)

	recs := makeUtxoRecords(t, 50, scriptPubKey)
	mirror := ledger.New(recs, time.Hour)

	client := &fakeClient{}
	e := New([]NodeClient{client}, key, addr, mirror, Params{
		TargetTPS:       100,
		Unleashed:       true,
		MillisPerTick:   5,
		BaseFeeRate:     1,
		MinChangeSompi:  1_000_000,
		MaxInflight:     1000,
		MaxPendingAge:   time.Minute,
		DurationSeconds: 0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fetch := func(ctx context.Context) ([]kaspa.UtxoRecord, error) { return nil, nil }

	err = e.Run(ctx, fetch)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Run can return mid-flight, with submissions already counted by the
	// fake client but their completions not yet drained off the channel, so
	// only an inequality holds here, not exact equality.
	require.LessOrEqual(t, mirror.SpentCount(), client.count())
	require.LessOrEqual(t, mirror.SpentCount()+mirror.PendingCount()+mirror.AvailableCount(), len(recs))
}

func TestRunStopsAfterConfiguredDuration(t *testing.T) {
	seed := sha256.Sum256([]byte("engine-duration-seed"))
	key, err := kaspa.NewKeyPairFromHex(hexEncode(seed[:]))
	require.NoError(t, err)
	addr, err := key.Address(kaspa.Mainnet)
	require.NoError(t, err)
	scriptPubKey, err := kaspa.ScriptPublicKey(addr)
	require.NoError(t, err)

	recs := makeUtxoRecords(t, 10, scriptPubKey)
	mirror := ledger.New(recs, time.Hour)

	client := &fakeClient{}
	e := New([]NodeClient{client}, key, addr, mirror, Params{
		TargetTPS:       10,
		Unleashed:       false,
		MillisPerTick:   10,
		BaseFeeRate:     1,
		MinChangeSompi:  1_000_000,
		MaxInflight:     100,
		MaxPendingAge:   time.Minute,
		DurationSeconds: 1,
	})

	fetch := func(ctx context.Context) ([]kaspa.UtxoRecord, error) { return nil, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = e.Run(ctx, fetch)
	require.NoError(t, err)
}
