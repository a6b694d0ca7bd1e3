package adapter

import (
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/rpc"
)

var ErrUnsupportedChain = errors.New("no transaction pipeline for chain kind")

// New wires the RPC client of network's kind onto gw and returns its adapter.
//
//nolint:ireturn
func New(network *chain.Network, gw *rpc.Gateway, keyStore keys.Service, opts ...Option) (ChainAdapter, error) {
	switch network.Kind {
	case chain.KindEVM:
		return NewEVM(network, rpc.NewEVMClient(gw), keyStore, opts...), nil
	case chain.KindSolana:
		return NewSolana(network, rpc.NewSolanaClient(gw), keyStore, opts...), nil
	case chain.KindTron:
		return NewTron(network, rpc.NewTronClient(gw), keyStore, opts...), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedChain, "%s (%s)", network.Name, network.Kind)
	}
}
