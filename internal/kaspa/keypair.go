package kaspa

import (
	"encoding/hex"
	"fmt"

	secp256k1 "github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/kaspad/domain/consensus/utils/txscript"
	"github.com/kaspanet/kaspad/domain/consensus/utils/utxo"
	"github.com/kaspanet/kaspad/util"

	"github.com/kaspa-tools/txgen/internal/kerrors"
)

// KeyPair wraps the single Schnorr keypair this process signs with. It is
// derived once at startup and shared read-only across the parallel builder
// pool — callers never mutate it, so no locking is needed.
type KeyPair struct {
	priv *secp256k1.SchnorrKeyPair
	pub  *secp256k1.SchnorrPublicKey
}

// NewKeyPairFromHex derives a KeyPair from a 64-character hex-encoded
// private key, rejecting anything else.
func NewKeyPairFromHex(privateKeyHex string) (*KeyPair, error) {
	if len(privateKeyHex) != 64 {
		return nil, fmt.Errorf("%w: private key must be 64 hex characters, got %d",
			kerrors.ErrConfig, len(privateKeyHex))
	}

	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex: %v", kerrors.ErrConfig, err)
	}

	priv, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", kerrors.ErrConfig, err)
	}

	pub, err := priv.SchnorrPublicKey()
	if err != nil {
		return nil, fmt.Errorf("%w: derive public key: %v", kerrors.ErrConfig, err)
	}

	return &KeyPair{priv: priv, pub: pub}, nil
}

// Address derives the pay-to-pubkey address this key controls on network n.
func (k *KeyPair) Address(n Network) (util.Address, error) {
	serialized, err := k.pub.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize public key: %w", err)
	}
	return util.NewAddressPublicKey(serialized[:], n.Prefix())
}

// ScriptPublicKey returns the standard pay-to-address script for addr,
// suitable for use as every output's locking script this process produces
// (it only ever pays itself).
func ScriptPublicKey(addr util.Address) (*externalapi.ScriptPublicKey, error) {
	return txscript.PayToAddrScript(addr)
}

// SignTransaction signs every input of tx against its corresponding
// UtxoEntry (inputEntries must be parallel to tx.Inputs), using
// SigHashAll. It mutates tx's inputs' SignatureScript fields in place.
//
// Signing touches only its own arguments, so it is safe to call
// concurrently for independent transactions from a worker pool.
func (k *KeyPair) SignTransaction(tx *externalapi.DomainTransaction, inputEntries []UtxoEntry) error {
	if len(inputEntries) != len(tx.Inputs) {
		return fmt.Errorf("%w: %d inputs, %d entries", kerrors.ErrSigning, len(tx.Inputs), len(inputEntries))
	}

	for i, entry := range inputEntries {
		tx.Inputs[i].UTXOEntry = utxo.NewUTXOEntry(
			entry.Amount, entry.ScriptPublicKey, entry.IsCoinbase, entry.BlockDAAScore,
		)
	}

	for i := range tx.Inputs {
		sigHash, err := consensushashing.TransactionSignatureHash(
			tx, i, consensushashing.SigHashAll,
		)
		if err != nil {
			return fmt.Errorf("%w: signature hash for input %d: %v", kerrors.ErrSigning, i, err)
		}

		signature, err := k.priv.SchnorrSign(sigHash.ByteArray())
		if err != nil {
			return fmt.Errorf("%w: sign input %d: %v", kerrors.ErrSigning, i, err)
		}

		sigBytes := signature.SerializeSchnorr()
		sigScript, err := txscript.NewScriptBuilder().
			AddData(append(sigBytes[:], byte(consensushashing.SigHashAll))).
			Script()
		if err != nil {
			return fmt.Errorf("%w: build signature script for input %d: %v", kerrors.ErrSigning, i, err)
		}

		tx.Inputs[i].SignatureScript = sigScript
	}

	return nil
}
