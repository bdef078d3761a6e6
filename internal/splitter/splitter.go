// Package splitter implements the Splitting Planner: the one-shot phase
// that turns a single large UTXO into many smaller ones before the paced
// submission engine starts, so the engine has enough independent inputs to
// reach its target rate without waiting on confirmations.
package splitter

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/util"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/kerrors"
	txlog "github.com/kaspa-tools/txgen/internal/log"
	"github.com/kaspa-tools/txgen/internal/txbuilder"
)

var log = btclog.Disabled

func init() { txlog.Register("SPLT", func(l btclog.Logger) { log = l }) }

// interSubmissionDelay and settleDelay are the waits matched to the pacing
// the original spam generator used between splitting submissions and after
// the chain completes, giving the node time to propagate each transaction
// before its change output is spent by the next one. They are vars rather
// than consts so tests can shrink them.
var (
	interSubmissionDelay = 200 * time.Millisecond
	settleDelay          = 10 * time.Second
)

// Submitter is the subset of the node adapter the planner needs.
type Submitter interface {
	SubmitTransaction(ctx context.Context, tx *externalapi.DomainTransaction, allowOrphan bool) error
}

// Params configures a single run of Plan.
type Params struct {
	TargetUTXOCount  int
	AmountPerOutput  uint64
	OutputsPerTx     int
	SplittingFeeRate uint64
	MinChangeSompi   uint64
}

// Plan chains splitting transactions starting from current (the caller
// passes its largest UTXO), each one spending the prior transaction's synthesized change
// output, until TargetUTXOCount new outputs have been created or funds run
// out. It submits serially and waits interSubmissionDelay between
// submissions, then settleDelay once the chain is done, so the engine that
// follows sees freshly-settling outputs rather than a mempool still
// absorbing the splitting chain.
//
// Plan returns the number of splitting transactions it actually submitted.
// It is not an error to stop early because change fell under MinChangeSompi
// on a non-final transaction — that is the documented "insufficient funds,
// stopping" behavior the original generator exhibits.
func Plan(ctx context.Context, sub Submitter, key *kaspa.KeyPair, addr util.Address, current kaspa.UtxoRecord, p Params) (int, error) {
	if p.OutputsPerTx <= 0 {
		return 0, fmt.Errorf("%w: outputs per transaction must be positive", kerrors.ErrConfig)
	}

	transactionsCount := (p.TargetUTXOCount + p.OutputsPerTx - 1) / p.OutputsPerTx

	kasAmount := current.Entry.Amount / 100_000_000
	log.Infof("splitting plan: %d transactions, using utxo with %d KAS", transactionsCount, kasAmount)

	created := 0
	for i := 0; i < transactionsCount; i++ {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		remainingTx := transactionsCount - i
		outputsThisTx := p.OutputsPerTx
		if remainingTx == 1 {
			outputsThisTx = p.TargetUTXOCount - i*p.OutputsPerTx
		}
		if outputsThisTx <= 0 {
			break
		}

		totalOutputValue := p.AmountPerOutput * uint64(outputsThisTx)
		fee := txbuilder.Fee(p.SplittingFeeRate)

		var changeValue uint64
		if current.Entry.Amount > totalOutputValue+fee {
			changeValue = current.Entry.Amount - totalOutputValue - fee
		}

		isLast := i == transactionsCount-1
		if changeValue < p.MinChangeSompi && !isLast {
			log.Infof("insufficient funds for change on transaction %d, stopping", i+1)
			break
		}

		tx, err := txbuilder.BuildSplitting(key, current, addr, p.AmountPerOutput, outputsThisTx, changeValue, p.MinChangeSompi)
		if err != nil {
			return created, fmt.Errorf("build splitting transaction %d: %w", i+1, err)
		}

		log.Infof("submitting splitting transaction %d with %d outputs", i+1, outputsThisTx)
		if err := sub.SubmitTransaction(ctx, tx, true); err != nil {
			return created, fmt.Errorf("submit splitting transaction %d: %w", i+1, err)
		}
		created++

		if !isLast && changeValue >= p.MinChangeSompi {
			txID := *kaspa.TransactionID(tx)
			current = kaspa.UtxoRecord{
				Outpoint: kaspa.Outpoint{TransactionID: txID, Index: uint32(outputsThisTx)},
				Entry: kaspa.UtxoEntry{
					Amount:          changeValue,
					ScriptPublicKey: current.Entry.ScriptPublicKey,
					BlockDAAScore:   current.Entry.BlockDAAScore,
					IsCoinbase:      false,
				},
			}
		}

		select {
		case <-ctx.Done():
			return created, ctx.Err()
		case <-time.After(interSubmissionDelay):
		}
	}

	log.Infof("created %d splitting transactions, waiting for confirmations", created)
	select {
	case <-ctx.Done():
		return created, ctx.Err()
	case <-time.After(settleDelay):
	}

	return created, nil
}
