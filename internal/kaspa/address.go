package kaspa

import (
	"github.com/kaspanet/kaspad/domain/dagconfig"
	"github.com/kaspanet/kaspad/util"
)

// Network identifies which Kaspa network this process is configured for.
type Network int

const (
	Mainnet Network = iota
	Testnet10
)

// Params returns the kaspad network parameters for n.
func (n Network) Params() *dagconfig.Params {
	switch n {
	case Testnet10:
		return &dagconfig.TestnetParams
	default:
		return &dagconfig.MainnetParams
	}
}

// Prefix returns the bech32 address prefix expected for n.
func (n Network) Prefix() util.Bech32Prefix {
	switch n {
	case Testnet10:
		return util.Bech32PrefixKaspaTest
	default:
		return util.Bech32PrefixKaspa
	}
}

// GRPCURL returns the default gRPC endpoint for n.
func (n Network) GRPCURL() string {
	switch n {
	case Testnet10:
		return "grpc://n-testnet-10.kaspa.ws:16210"
	default:
		return "grpc://n-mainnet.kaspa.ws:16110"
	}
}

// ExpectedHint returns the substring expected to appear in the connected
// node's reported network id.
func (n Network) ExpectedHint() string {
	switch n {
	case Testnet10:
		return "testnet-10"
	default:
		return "mainnet"
	}
}

func (n Network) String() string {
	switch n {
	case Testnet10:
		return "testnet10"
	default:
		return "mainnet"
	}
}

// ParseNetwork accepts "mainnet", "testnet10" or the "tn10" alias.
func ParseNetwork(s string) (Network, bool) {
	switch s {
	case "mainnet":
		return Mainnet, true
	case "testnet10", "tn10":
		return Testnet10, true
	default:
		return 0, false
	}
}

// AddressPrefixMatches reports whether addr's prefix belongs to network n.
func AddressPrefixMatches(addr util.Address, n Network) bool {
	return addr.Prefix() == n.Prefix()
}
