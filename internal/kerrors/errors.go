// Package kerrors defines the error taxonomy shared across the transaction
// generator: which failures are fatal at startup, which are recoverable
// mid-loop, and which (dust) are not errors at all.
package kerrors

import "errors"

var (
	// ErrConfig covers missing or malformed configuration: a bad key
	// format, a missing required value, an unreadable config file.
	ErrConfig = errors.New("configuration error")

	// ErrNetworkMismatch is returned when the derived address prefix does
	// not match the selected network.
	ErrNetworkMismatch = errors.New("address prefix does not match selected network")

	// ErrNodeNetworkMismatch is returned when the connected node's
	// reported network id does not contain the expected hint for the
	// selected network.
	ErrNodeNetworkMismatch = errors.New("connected node network id does not match selected network")

	// ErrRPCTransport covers connection and timeout failures talking to
	// the node. Fatal during setup; logged and tolerated mid-loop.
	ErrRPCTransport = errors.New("rpc transport error")

	// ErrSubmissionRejected means the node rejected a submitted
	// transaction. Never fatal: the reserved outpoint is released.
	ErrSubmissionRejected = errors.New("transaction submission rejected")

	// ErrInsufficientFunds means the splitting phase did not start because
	// the largest available UTXO is below the minimum amount it will split.
	ErrInsufficientFunds = errors.New("insufficient funds for splitting")

	// ErrSigning covers a cryptographic failure while signing a built
	// transaction. Per-transaction, never fatal to the engine.
	ErrSigning = errors.New("signing error")
)
