package engine

import (
	"runtime"
	"sync"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/util"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/txbuilder"
)

// spamJob pairs a signed transaction with the outpoint it spends, so the
// collector loop can report mirror state back without re-deriving it from
// the transaction's inputs.
type spamJob struct {
	tx       *externalapi.DomainTransaction
	outpoint kaspa.Outpoint
}

// buildSpamTransactions signs one spam transaction per record in batch,
// spread across a small worker pool — this codebase's one data-parallel
// island, standing in for the source generator's rayon par_iter over the
// same batch. Records that would produce dust are silently dropped, the
// same behavior the serial reference implementation has.
func buildSpamTransactions(batch []kaspa.UtxoRecord, key *kaspa.KeyPair, addr util.Address, fee, minChange uint64) []spamJob {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(batch) {
		workers = len(batch)
	}
	if workers < 1 {
		return nil
	}

	work := make(chan kaspa.UtxoRecord)
	results := make(chan spamJob, len(batch))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for rec := range work {
				tx, ok := txbuilder.BuildSpam(key, rec, addr, fee, minChange)
				if !ok {
					continue
				}
				results <- spamJob{tx: tx, outpoint: rec.Outpoint}
			}
		}()
	}

	go func() {
		for _, rec := range batch {
			work <- rec
		}
		close(work)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	jobs := make([]spamJob, 0, len(batch))
	for job := range results {
		jobs = append(jobs, job)
	}
	return jobs
}
