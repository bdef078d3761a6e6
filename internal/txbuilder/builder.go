package txbuilder

import (
	"fmt"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/subnetworks"
	"github.com/kaspanet/kaspad/util"

	"github.com/kaspa-tools/txgen/internal/kaspa"
)

// txVersion is the native transaction version used by every transaction
// this process builds.
const txVersion = 0

// BuildSplitting assembles and signs a transaction spending utxo into
// numOutputs uniform outputs of amountPerOutput sompi each, plus an
// optional change output of changeValue sompi if changeValue >= minChange.
// The change output, when present, is always last, so callers can
// synthesize its outpoint as (tx.ID(), numOutputs).
func BuildSplitting(
	key *kaspa.KeyPair,
	utxo kaspa.UtxoRecord,
	addr util.Address,
	amountPerOutput uint64,
	numOutputs int,
	changeValue uint64,
	minChange uint64,
) (*externalapi.DomainTransaction, error) {
	scriptPubKey, err := kaspa.ScriptPublicKey(addr)
	if err != nil {
		return nil, fmt.Errorf("build owner script: %w", err)
	}

	outputs := make([]*externalapi.DomainTransactionOutput, 0, numOutputs+1)
	for i := 0; i < numOutputs; i++ {
		outputs = append(outputs, &externalapi.DomainTransactionOutput{
			Value:           amountPerOutput,
			ScriptPublicKey: scriptPubKey,
		})
	}
	if changeValue >= minChange {
		outputs = append(outputs, &externalapi.DomainTransactionOutput{
			Value:           changeValue,
			ScriptPublicKey: scriptPubKey,
		})
	}

	tx := &externalapi.DomainTransaction{
		Version: txVersion,
		Inputs: []*externalapi.DomainTransactionInput{{
			PreviousOutpoint: externalapi.DomainOutpoint{
				TransactionID: utxo.Outpoint.TransactionID,
				Index:         utxo.Outpoint.Index,
			},
			SigOpCount: 1,
		}},
		Outputs:      outputs,
		LockTime:     0,
		SubnetworkID: subnetworks.SubnetworkIDNative,
		Gas:          0,
		Payload:      []byte{},
	}

	if err := key.SignTransaction(tx, []kaspa.UtxoEntry{utxo.Entry}); err != nil {
		return nil, err
	}

	return tx, nil
}

// BuildSpam assembles and signs a single-input, single-output self-transfer
// spending utxo, paying amount (utxo.Entry.Amount - fee) back to addr. The
// second return is false if that output would fall below minChange, or if
// building or signing the transaction failed — the caller is expected to
// treat either case as a skip, not a failure worth surfacing per-record.
func BuildSpam(
	key *kaspa.KeyPair,
	utxo kaspa.UtxoRecord,
	addr util.Address,
	fee uint64,
	minChange uint64,
) (*externalapi.DomainTransaction, bool) {
	if utxo.Entry.Amount < fee {
		return nil, false
	}
	outputAmount := utxo.Entry.Amount - fee
	if outputAmount < minChange {
		return nil, false
	}

	scriptPubKey, err := kaspa.ScriptPublicKey(addr)
	if err != nil {
		return nil, false
	}

	tx := &externalapi.DomainTransaction{
		Version: txVersion,
		Inputs: []*externalapi.DomainTransactionInput{{
			PreviousOutpoint: externalapi.DomainOutpoint{
				TransactionID: utxo.Outpoint.TransactionID,
				Index:         utxo.Outpoint.Index,
			},
			SigOpCount: 1,
		}},
		Outputs: []*externalapi.DomainTransactionOutput{{
			Value:           outputAmount,
			ScriptPublicKey: scriptPubKey,
		}},
		LockTime:     0,
		SubnetworkID: subnetworks.SubnetworkIDNative,
		Gas:          0,
		Payload:      []byte{},
	}

	if err := key.SignTransaction(tx, []kaspa.UtxoEntry{utxo.Entry}); err != nil {
		return nil, false
	}

	return tx, true
}
