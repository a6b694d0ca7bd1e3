package adapter

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
	"google.golang.org/protobuf/proto"
)

const (
	tronContractSuccess = "SUCCESS"
	tronResultFailed    = "FAILED"
)

type TronNode interface {
	txbuilder.TronNode
	submit.TronSender
	GetAccount(ctx context.Context, addrHex string) (*rpc.TronAccount, error)
	GetTransactionByID(ctx context.Context, txID string) (*rpc.TronTransaction, error)
	GetTransactionInfoByID(ctx context.Context, txID string) (*rpc.TronTransactionInfo, error)
}

type tronAdapter struct {
	base
	node TronNode
}

// NewTron creates the adapter of a Tron network. Only TRX transfers are built,
// TRC20 transfers are recognized when parsing receipts.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewTron(network *chain.Network, node TronNode, keyStore keys.Service, opts ...Option) ChainAdapter {
	o := newOptions(opts)

	return &tronAdapter{
		base: base{
			network:   network,
			keys:      keyStore,
			builder:   txbuilder.NewService(network, txbuilder.WithTronNode(node)),
			signer:    signer.NewService(keyStore),
			submitter: submit.NewService(network.Name, submit.NewTronBroadcaster(node), submit.WithMetrics(o.metrics)),
		},
		node: node,
	}
}

func (a *tronAdapter) BuildTx(ctx context.Context, req *TransferRequest) (*txbuilder.UnsignedTransaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Token != "" {
		return nil, errors.Wrapf(ErrUnsupportedToken, "%s on %s", req.Token, a.network.Name)
	}
	if !req.Amount.IsInt64() {
		return nil, errors.Wrapf(ErrAmountRange, "%s sun", req.Amount)
	}

	from, err := a.Address(ctx, req.Owner, req.Purpose)
	if err != nil {
		return nil, err
	}

	return a.builder.BuildTron(ctx, &txbuilder.TronRequest{
		From:   from,
		To:     req.To,
		Amount: req.Amount.Int64(),
	})
}

func (a *tronAdapter) ParseReceipt(ctx context.Context, hash string) (*Receipt, error) {
	tx, err := a.node.GetTransactionByID(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch transaction")
	}

	info, err := a.node.GetTransactionInfoByID(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch transaction info")
	}

	raw, err := hex.DecodeString(tx.RawDataHex)
	if err != nil {
		return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "gettransactionbyid", Message: "raw_data_hex", Err: err}
	}

	var txRaw core.TransactionRaw
	if err := proto.Unmarshal(raw, &txRaw); err != nil {
		return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "gettransactionbyid", Message: "raw_data", Err: err}
	}

	out := &Receipt{
		Network: a.network.Name,
		Hash:    tx.TxID,
		Success: len(tx.Ret) > 0 && tx.Ret[0].ContractRet == tronContractSuccess &&
			info.Result != tronResultFailed &&
			(info.Receipt.Result == "" || info.Receipt.Result == tronContractSuccess),
		Amount: new(big.Int),
		Data:   txRaw.GetData(),
		Memo:   string(txRaw.GetData()),
	}

	contracts := txRaw.GetContract()
	if len(contracts) == 0 {
		return out, nil
	}

	if err := parseTronContract(contracts[0], out); err != nil {
		return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "gettransactionbyid", Message: "contract", Err: err}
	}

	return out, nil
}

func parseTronContract(contract *core.Transaction_Contract, out *Receipt) error {
	switch contract.GetType() {
	case core.Transaction_Contract_TransferContract:
		var transfer core.TransferContract
		if err := proto.Unmarshal(contract.GetParameter().GetValue(), &transfer); err != nil {
			return errors.Wrap(err, "transfer contract")
		}

		from, err := address.TronFromHex(hex.EncodeToString(transfer.GetOwnerAddress()))
		if err != nil {
			return err
		}
		to, err := address.TronFromHex(hex.EncodeToString(transfer.GetToAddress()))
		if err != nil {
			return err
		}

		out.From = from
		out.To = to
		out.Amount = big.NewInt(transfer.GetAmount())

	case core.Transaction_Contract_TriggerSmartContract:
		var trigger core.TriggerSmartContract
		if err := proto.Unmarshal(contract.GetParameter().GetValue(), &trigger); err != nil {
			return errors.Wrap(err, "trigger contract")
		}
		if !txbuilder.IsTransfer(trigger.GetData()) {
			return nil
		}

		to, amount, rest, err := txbuilder.DecodeTransfer(trigger.GetData())
		if err != nil {
			return err
		}

		from, err := address.TronFromHex(hex.EncodeToString(trigger.GetOwnerAddress()))
		if err != nil {
			return err
		}
		token, err := address.TronFromHex(hex.EncodeToString(trigger.GetContractAddress()))
		if err != nil {
			return err
		}
		recipient, err := address.EVMToTron(to.Hex())
		if err != nil {
			return err
		}

		out.From = from
		out.To = recipient
		out.TokenAddress = token
		out.Amount = amount
		if len(rest) > 0 {
			out.Data = rest
		}
	}

	return nil
}
