// Package nodeclient is the Node Adapter: a typed wrapper over the kaspad
// RPC client that exposes only the four operations this codebase needs,
// translating kaspad's wire types to this codebase's own kaspa.UtxoRecord /
// kaspa.ServerInfo. Query failures are wrapped in kerrors.ErrRPCTransport and
// every submission failure in kerrors.ErrSubmissionRejected.
package nodeclient

import (
	"context"
	"fmt"
	"sort"

	"github.com/btcsuite/btclog"
	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
	"github.com/kaspanet/kaspad/infrastructure/network/rpcclient"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/kerrors"
	txlog "github.com/kaspa-tools/txgen/internal/log"
)

var log = btclog.Disabled

func init() { txlog.Register("NODE", func(l btclog.Logger) { log = l }) }

// Client wraps a single connection to a kaspad node.
type Client struct {
	rpc *rpcclient.RPCClient
}

// Dial opens one RPC connection to rpcURL.
func Dial(rpcURL string) (*Client, error) {
	rpc, err := rpcclient.NewRPCClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", kerrors.ErrRPCTransport, rpcURL, err)
	}
	return &Client{rpc: rpc}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Disconnect()
}

// FetchUTXOs returns every UTXO owned by address that is already spendable
// per the coinbase maturity and confirmation depth given, largest amount
// first. It does not consult the ledger mirror's pending/spent state —
// that filtering happens one layer up, in internal/ledger, so this adapter
// stays a pure node query.
func (c *Client) FetchUTXOs(
	ctx context.Context,
	address string,
	coinbaseMaturity, confirmationDepth uint64,
) ([]kaspa.UtxoRecord, error) {
	resp, err := c.rpc.GetUTXOsByAddresses([]string{address})
	if err != nil {
		return nil, fmt.Errorf("%w: get utxos by address: %v", kerrors.ErrRPCTransport, err)
	}

	info, err := c.ServerInfo(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]kaspa.UtxoRecord, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		rec, err := kaspa.FromRPCUTXOEntry(e)
		if err != nil {
			log.Warnf("skipping malformed utxo entry: %v", err)
			continue
		}
		if !kaspa.Spendable(rec.Entry, info.VirtualDAAScore, coinbaseMaturity, confirmationDepth) {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Entry.Amount > records[j].Entry.Amount
	})

	log.Debugf("fetched %d spendable utxos for %s", len(records), address)
	return records, nil
}

// ServerInfo queries the node's current network id and virtual DAA score.
func (c *Client) ServerInfo(_ context.Context) (kaspa.ServerInfo, error) {
	info, err := c.rpc.GetBlockDAGInfo()
	if err != nil {
		return kaspa.ServerInfo{}, fmt.Errorf("%w: get block dag info: %v", kerrors.ErrRPCTransport, err)
	}
	return kaspa.ServerInfo{
		NetworkID:       info.NetworkName,
		VirtualDAAScore: info.VirtualDAAScore,
	}, nil
}

// MempoolSize queries the node's advisory mempool transaction count.
func (c *Client) MempoolSize(_ context.Context) (int, error) {
	info, err := c.rpc.GetInfo()
	if err != nil {
		return 0, fmt.Errorf("%w: get info: %v", kerrors.ErrRPCTransport, err)
	}
	return int(info.MempoolSize), nil
}

// SubmitTransaction submits tx to the node. Any error from the submit call is
// wrapped in kerrors.ErrSubmissionRejected; a rejection by the node and a
// transport failure are not told apart.
func (c *Client) SubmitTransaction(_ context.Context, tx *externalapi.DomainTransaction, allowOrphan bool) error {
	_, err := c.rpc.SubmitTransaction(kaspa.ToRPCTransaction(tx), allowOrphan)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrSubmissionRejected, err)
	}
	return nil
}
