package adapter

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

const (
	receiptStatusSuccess = "0x1"
	minTransferTopics    = 3 // signature, from, to
)

// EVMNode is the EVM RPC surface the adapter uses
type EVMNode interface {
	txbuilder.EVMNode
	submit.EVMSender
	GetBalance(ctx context.Context, addr string) (*big.Int, error)
	Call(ctx context.Context, to string, data []byte) ([]byte, error)
	GetTransactionByHash(ctx context.Context, hash string) (*rpc.EVMTransaction, error)
	GetTransactionReceipt(ctx context.Context, hash string) (*rpc.EVMReceipt, error)
}

type evmAdapter struct {
	base
	node EVMNode
}

// NewEVM creates the adapter of an EVM network
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewEVM(network *chain.Network, node EVMNode, keyStore keys.Service, opts ...Option) ChainAdapter {
	o := newOptions(opts)

	return &evmAdapter{
		base: base{
			network: network,
			keys:    keyStore,
			builder: txbuilder.NewService(network,
				txbuilder.WithEVMNode(node),
				txbuilder.WithNonceTracker(o.nonces)),
			signer:    signer.NewService(keyStore),
			submitter: submit.NewService(network.Name, submit.NewEVMBroadcaster(node), submit.WithMetrics(o.metrics)),
		},
		node: node,
	}
}

func (a *evmAdapter) BuildTx(ctx context.Context, req *TransferRequest) (*txbuilder.UnsignedTransaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	from, err := a.Address(ctx, req.Owner, req.Purpose)
	if err != nil {
		return nil, err
	}

	return a.builder.BuildEVM(ctx, &txbuilder.EVMRequest{
		ChainID:  a.network.ChainID,
		From:     from,
		To:       req.To,
		Token:    req.Token,
		Amount:   req.Amount,
		Metadata: req.Metadata,
	})
}

// SignAndEncode hands the nonce back to the tracker when signing fails, since nothing was broadcast.
func (a *evmAdapter) SignAndEncode(ctx context.Context, tx *txbuilder.UnsignedTransaction, owner string, purpose string) (*signer.SignedTransaction, error) {
	signed, err := a.signer.SignAndEncode(ctx, tx, owner, purpose)
	if err != nil && tx != nil && tx.EVM != nil {
		a.builder.ReleaseNonce(tx.EVM.From.Hex(), tx.EVM.Nonce)
	}

	return signed, err
}

// Submit releases the tracked nonce when the node definitively rejected the transaction.
func (a *evmAdapter) Submit(ctx context.Context, signed *signer.SignedTransaction) (*submit.Result, error) {
	res, err := a.submitter.Submit(ctx, signed)
	if err != nil && rpc.KindOf(err) == rpc.KindRPC && signed != nil && signed.From != "" {
		a.builder.ResetNonce(signed.From)
	}

	return res, err
}

func (a *evmAdapter) ParseReceipt(ctx context.Context, hash string) (*Receipt, error) {
	tx, err := a.node.GetTransactionByHash(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch transaction")
	}

	receipt, err := a.node.GetTransactionReceipt(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch receipt")
	}

	input, err := hexutil.Decode(tx.Input)
	if err != nil {
		return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "eth_getTransactionByHash", Message: "input", Err: err}
	}

	out := &Receipt{
		Network: a.network.Name,
		Hash:    strings.ToLower(hash),
		Success: receipt.Status == receiptStatusSuccess,
		From:    strings.ToLower(tx.From),
	}

	if tx.To == nil {
		util.LogFromContext(ctx).Debug().Str("tx_hash", hash).Msg("Contract creation is not a transfer")
		out.Amount = new(big.Int)
		return out, nil
	}

	switch {
	case txbuilder.IsTransfer(input):
		to, amount, rest, err := txbuilder.DecodeTransfer(input)
		if err != nil {
			return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "eth_getTransactionByHash", Message: "transfer input", Err: err}
		}
		out.TokenAddress = strings.ToLower(*tx.To)
		out.To = strings.ToLower(to.Hex())
		out.Amount = amount
		out.Data = rest

	case transferLog(receipt) != nil:
		l := transferLog(receipt)
		out.TokenAddress = strings.ToLower(l.Address)
		out.To = strings.ToLower(common.HexToAddress(l.Topics[2]).Hex())
		amount, err := hexutil.DecodeBig(trimLeadingZeros(l.Data))
		if err != nil {
			return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "eth_getTransactionReceipt", Message: "transfer log", Err: err}
		}
		out.Amount = amount
		out.Data = input

	default:
		value, err := hexutil.DecodeBig(tx.Value)
		if err != nil {
			return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "eth_getTransactionByHash", Message: "value", Err: err}
		}
		out.To = strings.ToLower(*tx.To)
		out.Amount = value
		out.Data = input
	}

	return out, nil
}

// transferLog returns the first ERC20 Transfer event of the receipt.
func transferLog(r *rpc.EVMReceipt) *rpc.EVMLog {
	for i := range r.Logs {
		l := &r.Logs[i]
		if len(l.Topics) >= minTransferTopics && common.HexToHash(l.Topics[0]) == txbuilder.TransferEventTopic {
			return l
		}
	}

	return nil
}

// trimLeadingZeros turns 32 byte log data into a hex quantity hexutil accepts.
func trimLeadingZeros(data string) string {
	digits := strings.TrimLeft(strings.TrimPrefix(data, "0x"), "0")
	if digits == "" {
		return "0x0"
	}

	return "0x" + digits
}
