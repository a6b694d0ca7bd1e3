package submit

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
)

var (
	ErrKindMismatch = errors.New("signed transaction has the wrong kind for this broadcaster")
	ErrNonceTaken   = errors.New("nonce used by another transaction")
)

// EVMLookup is implemented by EVM senders that can tell whether a node knows a transaction
type EVMLookup interface {
	GetTransactionByHash(ctx context.Context, hash string) (*rpc.EVMTransaction, error)
}

type evmBroadcaster struct{ node EVMSender }

type solanaBroadcaster struct{ node SolanaSender }

type tronBroadcaster struct{ node TronSender }

// NewEVMBroadcaster uses eth_sendRawTransaction
//
//nolint:ireturn
func NewEVMBroadcaster(node EVMSender) Broadcaster {
	return &evmBroadcaster{node: node}
}

// NewSolanaBroadcaster uses sendTransaction with base64 encoding
//
//nolint:ireturn
func NewSolanaBroadcaster(node SolanaSender) Broadcaster {
	return &solanaBroadcaster{node: node}
}

// NewTronBroadcaster uses /wallet/broadcasttransaction
//
//nolint:ireturn
func NewTronBroadcaster(node TronSender) Broadcaster {
	return &tronBroadcaster{node: node}
}

func (b *evmBroadcaster) Broadcast(ctx context.Context, signed *signer.SignedTransaction) (string, error) {
	if signed.Kind != chain.KindEVM {
		return "", errors.Wrapf(ErrKindMismatch, "got %s", signed.Kind)
	}

	hash, err := b.node.SendRawTransaction(ctx, signed.Encoded)
	if err != nil && rpc.IsIdempotent(err) && strings.Contains(strings.ToLower(err.Error()), "nonce too low") {
		return hash, b.confirmNonceOwner(ctx, signed.Hash, err)
	}

	return hash, err
}

// confirmNonceOwner keeps a "nonce too low" answer idempotent only when the node knows
// hash. Otherwise another transaction used the nonce and the submission is rejected.
func (b *evmBroadcaster) confirmNonceOwner(ctx context.Context, hash string, cause error) error {
	lookup, ok := b.node.(EVMLookup)
	if !ok {
		return cause
	}

	_, err := lookup.GetTransactionByHash(ctx, hash)
	switch {
	case err == nil:
		return cause
	case errors.Is(err, rpc.ErrNotFound):
		return &rpc.Error{Kind: rpc.KindRPC, Method: "eth_sendRawTransaction", Message: cause.Error(), Err: ErrNonceTaken}
	default:
		// the transaction may still be ours
		return &rpc.Error{Kind: rpc.KindTransient, Method: "eth_getTransactionByHash", Message: "nonce owner unknown", Err: err}
	}
}

func (b *solanaBroadcaster) Broadcast(ctx context.Context, signed *signer.SignedTransaction) (string, error) {
	if signed.Kind != chain.KindSolana {
		return "", errors.Wrapf(ErrKindMismatch, "got %s", signed.Kind)
	}

	return b.node.SendTransaction(ctx, signed.Encoded)
}

func (b *tronBroadcaster) Broadcast(ctx context.Context, signed *signer.SignedTransaction) (string, error) {
	if signed.Kind != chain.KindTron || signed.Tron == nil {
		return "", errors.Wrapf(ErrKindMismatch, "got %s", signed.Kind)
	}

	res, err := b.node.BroadcastTransaction(ctx, signed.Tron)
	if err != nil {
		return "", err
	}

	return res.TxID, nil
}
