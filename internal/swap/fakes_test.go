package swap_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

// fakeAdapter scripts receipts and submission outcomes of one network
type fakeAdapter struct {
	mu sync.Mutex

	network    *chain.Network
	pool       string
	receipts   map[string]*adapter.Receipt
	balance    *big.Int
	tokens     *big.Int // balance of every token
	submitErrs []error
	signErr    error

	built     []*adapter.TransferRequest
	signed    int
	submitted []string
}

var _ adapter.ChainAdapter = (*fakeAdapter)(nil)

func newFakeAdapter(network *chain.Network) *fakeAdapter {
	return &fakeAdapter{
		network:  network,
		pool:     poolAddress,
		receipts: make(map[string]*adapter.Receipt),
		balance:  new(big.Int),
		tokens:   new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
	}
}

func (f *fakeAdapter) Kind() chain.Kind        { return f.network.Kind }
func (f *fakeAdapter) Network() *chain.Network { return f.network }

func (f *fakeAdapter) Address(context.Context, string, string) (string, error) {
	return f.pool, nil
}

func (f *fakeAdapter) BuildTx(_ context.Context, req *adapter.TransferRequest) (*txbuilder.UnsignedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.built = append(f.built, req)

	return &txbuilder.UnsignedTransaction{EVM: &txbuilder.EVMTx{Nonce: uint64(len(f.built) - 1), Value: req.Amount}}, nil
}

func (f *fakeAdapter) SignAndEncode(_ context.Context, tx *txbuilder.UnsignedTransaction, _ string, _ string) (*signer.SignedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.signed++
	if f.signErr != nil {
		return nil, f.signErr
	}

	return &signer.SignedTransaction{
		Kind: f.network.Kind,
		Hash: fmt.Sprintf("0xout%02d", tx.EVM.Nonce+1),
		From: f.pool,
	}, nil
}

func (f *fakeAdapter) Submit(_ context.Context, signed *signer.SignedTransaction) (*submit.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitted = append(f.submitted, signed.Hash)

	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return nil, &submit.Error{Hash: signed.Hash, Reason: err.Error(), Err: err}
		}
	}

	return &submit.Result{State: submit.StateConfirmed, Hash: signed.Hash}, nil
}

func (f *fakeAdapter) NativeBalance(context.Context, string, string) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeAdapter) TokenBalance(context.Context, string, string, string) (*big.Int, error) {
	return f.tokens, nil
}

func (f *fakeAdapter) ParseReceipt(_ context.Context, hash string) (*adapter.Receipt, error) {
	r, ok := f.receipts[hash]
	if !ok {
		return nil, &rpc.Error{Kind: rpc.KindNotFound, Method: "eth_getTransactionReceipt", Err: rpc.ErrNotFound}
	}

	return r, nil
}

func (f *fakeAdapter) transfers() []*adapter.TransferRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*adapter.TransferRequest{}, f.built...)
}

type fakePublisher struct {
	mu      sync.Mutex
	records []*history.SwapRecord
}

func (p *fakePublisher) Publish(_ context.Context, rec *history.SwapRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records = append(p.records, rec)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

var (
	errRejected    = &rpc.Error{Kind: rpc.KindRPC, Code: -32000, Message: "insufficient funds for gas * price + value"}
	errUnreachable = &rpc.Error{Kind: rpc.KindConsensusUnreachable, Message: "no consensus", Err: rpc.ErrConsensusUnreachable}
)
