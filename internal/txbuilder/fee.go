// Package txbuilder assembles and signs the two transaction shapes this
// codebase ever produces: a splitting transaction (one input, many uniform
// outputs plus optional change) and a spam transaction (one input, one
// output). Every function here is pure given its arguments — no shared
// state, safe to call from any number of worker goroutines at once.
package txbuilder

// EstimatedMass is the fixed mass (in gram-units) assumed for every
// transaction this process builds, regardless of actual input/output count.
// This is a conscious simplification: single-input spam transactions fit
// comfortably under it, and splitting is a one-shot, richly-funded
// operation that can absorb the under-estimate for many-output
// transactions. See SPEC_FULL.md for the tradeoff.
const EstimatedMass = 1700

// FeeEstimator computes a transaction's required fee, in sompi, at a given
// sompi-per-gram rate. Callers compute the fee before calling BuildSplitting
// or BuildSpam, so the builder itself does not depend on the mass model. The
// engine and the splitting planner call Fee directly; neither takes a
// FeeEstimator parameter.
type FeeEstimator func(rate uint64) uint64

// Fee is the default FeeEstimator: the fixed-mass model described above.
func Fee(rate uint64) uint64 {
	return rate * EstimatedMass
}
