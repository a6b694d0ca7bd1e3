package txbuilder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"google.golang.org/protobuf/proto"
)

func (s *service) BuildTron(ctx context.Context, req *TronRequest) (*UnsignedTransaction, error) {
	if s.network.Kind != chain.KindTron || s.tron == nil {
		return nil, errors.Wrapf(ErrUnsupportedChain, "no Tron node for %s", s.network.Name)
	}
	if req == nil {
		return nil, errors.Wrap(ErrInvalidRequest, "nil request")
	}
	if req.Amount <= 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "amount must be positive")
	}

	owner, err := address.ParseTron(req.From)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	to, err := address.ParseTron(req.To)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	tx, err := s.tron.CreateTransaction(ctx, hex.EncodeToString(owner), hex.EncodeToString(to), req.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tron transaction")
	}

	raw, err := hex.DecodeString(tx.RawDataHex)
	if err != nil {
		return nil, errors.Wrap(ErrUnexpectedPayload, "raw_data_hex is not hex")
	}

	sum := sha256.Sum256(raw)
	if !strings.EqualFold(hex.EncodeToString(sum[:]), tx.TxID) {
		return nil, errors.Wrapf(ErrUnexpectedPayload, "txID %s does not match raw data", tx.TxID)
	}

	if err := checkTronTransfer(raw, owner, to, req.Amount); err != nil {
		return nil, err
	}

	return &UnsignedTransaction{Tron: &TronTx{
		OwnerAddress: req.From,
		ToAddress:    req.To,
		Amount:       req.Amount,
		RawData:      raw,
		TxID:         strings.ToLower(tx.TxID),
		Node:         tx,
	}}, nil
}

// checkTronTransfer decodes raw_data and makes sure the node built exactly the transfer we asked for.
func checkTronTransfer(raw []byte, owner []byte, to []byte, amount int64) error {
	var txRaw core.TransactionRaw
	if err := proto.Unmarshal(raw, &txRaw); err != nil {
		return errors.Wrapf(ErrUnexpectedPayload, "raw data: %v", err)
	}

	contracts := txRaw.GetContract()
	if len(contracts) != 1 || contracts[0].GetType() != core.Transaction_Contract_TransferContract {
		return errors.Wrap(ErrUnexpectedPayload, "expected a single TransferContract")
	}

	var transfer core.TransferContract
	if err := proto.Unmarshal(contracts[0].GetParameter().GetValue(), &transfer); err != nil {
		return errors.Wrapf(ErrUnexpectedPayload, "transfer contract: %v", err)
	}

	if !bytes.Equal(transfer.GetOwnerAddress(), owner) ||
		!bytes.Equal(transfer.GetToAddress(), to) ||
		transfer.GetAmount() != amount {
		return errors.Wrap(ErrUnexpectedPayload, "transfer fields differ from request")
	}

	return nil
}
