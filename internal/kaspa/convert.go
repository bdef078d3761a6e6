package kaspa

import (
	"encoding/hex"
	"fmt"

	"github.com/kaspanet/kaspad/app/appmessage"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// FromRPCUTXOEntry converts one address-scoped UTXO entry from the node's
// GetUTXOsByAddresses response into our own UtxoRecord.
func FromRPCUTXOEntry(e *appmessage.UTXOsByAddressesEntry) (UtxoRecord, error) {
	txID, err := ParseTransactionID(e.Outpoint.TransactionID)
	if err != nil {
		return UtxoRecord{}, fmt.Errorf("parse outpoint transaction id: %w", err)
	}

	scriptBytes, err := hex.DecodeString(e.UTXOEntry.ScriptPublicKey.Script)
	if err != nil {
		return UtxoRecord{}, fmt.Errorf("decode script public key: %w", err)
	}

	return UtxoRecord{
		Outpoint: Outpoint{
			TransactionID: *txID,
			Index:         e.Outpoint.Index,
		},
		Entry: UtxoEntry{
			Amount: e.UTXOEntry.Amount,
			ScriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  scriptBytes,
				Version: e.UTXOEntry.ScriptPublicKey.Version,
			},
			BlockDAAScore: e.UTXOEntry.BlockDAAScore,
			IsCoinbase:    e.UTXOEntry.IsCoinbase,
		},
	}, nil
}

// ToRPCTransaction converts a fully signed domain transaction into the wire
// shape expected by SubmitTransactionRequest.
func ToRPCTransaction(tx *externalapi.DomainTransaction) *appmessage.RPCTransaction {
	return appmessage.DomainTransactionToRPCTransaction(tx)
}
