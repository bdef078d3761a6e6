// Package kaspa holds the value types the rest of this codebase works with
// — outpoints, UTXO entries, server info — decoupled from the exact shape of
// the kaspad RPC wire types, the same way lnd's sweep package works against
// its own pendingInput rather than raw wire.OutPoint fields everywhere.
package kaspa

import (
	"encoding/hex"
	"fmt"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/kaspad/domain/consensus/utils/transactionid"
)

// Outpoint identifies a prior transaction output. It is comparable and safe
// to use as a map key.
type Outpoint struct {
	TransactionID externalapi.DomainTransactionID
	Index         uint32
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TransactionID.String(), o.Index)
}

// UtxoEntry carries the attributes of a spendable output that this codebase
// cares about: enough to compute spendability, fee headroom, and to rebuild
// a kaspad UTXOEntry when signing.
type UtxoEntry struct {
	Amount          uint64
	ScriptPublicKey *externalapi.ScriptPublicKey
	BlockDAAScore   uint64
	IsCoinbase      bool
}

// UtxoRecord is the working unit passed between the node adapter, the
// ledger mirror, and the transaction builder.
type UtxoRecord struct {
	Outpoint Outpoint
	Entry    UtxoEntry
}

// ServerInfo is the subset of the node's reported state this codebase
// depends on: what network it's on, and how far the DAG has progressed.
type ServerInfo struct {
	NetworkID       string
	VirtualDAAScore uint64
}

// Spendable reports whether entry is spendable given the node's current
// virtual DAA score and the configured maturity windows. Coinbase outputs
// require coinbaseMaturity DAA units of age; all others require
// confirmationDepth.
func Spendable(entry UtxoEntry, virtualDAAScore, coinbaseMaturity, confirmationDepth uint64) bool {
	needed := confirmationDepth
	if entry.IsCoinbase {
		needed = coinbaseMaturity
	}
	return entry.BlockDAAScore+needed <= virtualDAAScore
}

// TransactionID computes tx's id, used to synthesize the outpoint of a
// change output immediately after building and signing a transaction,
// without waiting on the node to echo it back.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	return consensushashing.TransactionID(tx)
}

// ParseTransactionID decodes a hex transaction id into its fixed-size form.
func ParseTransactionID(s string) (*externalapi.DomainTransactionID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode transaction id %q: %w", s, err)
	}
	return transactionid.FromBytes(b)
}
