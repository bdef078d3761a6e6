package splitter

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/stretchr/testify/require"

	"github.com/kaspa-tools/txgen/internal/kaspa"
)

type fakeSubmitter struct {
	submitted []*externalapi.DomainTransaction
}

func (f *fakeSubmitter) SubmitTransaction(_ context.Context, tx *externalapi.DomainTransaction, allowOrphan bool) error {
	if !allowOrphan {
		panic("splitting submissions must allow orphans")
	}
	f.submitted = append(f.submitted, tx)
	return nil
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

func testKeyPairAndAddress(t *testing.T) (*kaspa.KeyPair, kaspa.UtxoEntry) {
	t.Helper()
	seed := sha256.Sum256([]byte("splitter-test-seed"))
	kp, err := kaspa.NewKeyPairFromHex(hexEncode(seed[:]))
	require.NoError(t, err)

	addr, err := kp.Address(kaspa.Mainnet)
	require.NoError(t, err)

	scriptPubKey, err := kaspa.ScriptPublicKey(addr)
	require.NoError(t, err)

	return kp, kaspa.UtxoEntry{ScriptPublicKey: scriptPubKey}
}

func TestPlanStopsEarlyWhenChangeRunsOut(t *testing.T) {
	interSubmissionDelay = time.Millisecond
	settleDelay = time.Millisecond
	t.Cleanup(func() {
		interSubmissionDelay = 200 * time.Millisecond
		settleDelay = 10 * time.Second
	})

	kp, entryTemplate := testKeyPairAndAddress(t)
	addr, err := kp.Address(kaspa.Mainnet)
	require.NoError(t, err)

	current := kaspa.UtxoRecord{
		Outpoint: kaspa.Outpoint{Index: 0},
		Entry: kaspa.UtxoEntry{
			Amount:          5_000_000_000, // 50 KAS
			ScriptPublicKey: entryTemplate.ScriptPublicKey,
		},
	}

	sub := &fakeSubmitter{}
	p := Params{
		TargetUTXOCount:  100,
		AmountPerOutput:  150_000_000,
		OutputsPerTx:     10,
		SplittingFeeRate: 10,
		MinChangeSompi:   1_000_000,
	}

	created, err := Plan(context.Background(), sub, kp, addr, current, p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, created, 1)
	require.LessOrEqual(t, created, 10)
	require.Len(t, sub.submitted, created)
}

func TestPlanRejectsNonPositiveOutputsPerTx(t *testing.T) {
	kp, entryTemplate := testKeyPairAndAddress(t)
	addr, err := kp.Address(kaspa.Mainnet)
	require.NoError(t, err)

	current := kaspa.UtxoRecord{
		Entry: kaspa.UtxoEntry{Amount: 1, ScriptPublicKey: entryTemplate.ScriptPublicKey},
	}

	_, err = Plan(context.Background(), &fakeSubmitter{}, kp, addr, current, Params{OutputsPerTx: 0})
	require.Error(t, err)
}
