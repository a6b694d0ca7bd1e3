package txbuilder_test

import (
	"context"
	"math/big"
	"sync"

	"github/chapool/chainswap/internal/wallet/rpc"
)

type fakeEVMNode struct {
	mu       sync.Mutex
	pending  uint64
	gasPrice *big.Int
	err      error
}

func (f *fakeEVMNode) GetTransactionCount(_ context.Context, _ string, block string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if block != rpc.BlockPending {
		panic("nonce must be read from the pending block")
	}

	return f.pending, f.err
}

func (f *fakeEVMNode) GasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, f.err
}

func (f *fakeEVMNode) setPending(n uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = n
}

type fakeSolanaNode struct {
	blockhash string
}

func (f *fakeSolanaNode) GetLatestBlockhash(context.Context) (*rpc.SolanaBlockhash, error) {
	return &rpc.SolanaBlockhash{Blockhash: f.blockhash, LastValidBlockHeight: 100}, nil
}

type fakeTronNode struct {
	tx *rpc.TronTransaction
}

func (f *fakeTronNode) CreateTransaction(context.Context, string, string, int64) (*rpc.TronTransaction, error) {
	return f.tx, nil
}
