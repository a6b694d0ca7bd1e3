package txbuilder

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/wallet/chain"
)

const (
	DefaultNativeGasLimit uint64 = params.TxGas
	DefaultERC20GasLimit  uint64 = 100_000
)

// PriorityPremium is added to eth_gasPrice when the caller supplies no fees (2 Gwei).
var PriorityPremium = big.NewInt(2 * params.GWei)

func (s *service) BuildEVM(ctx context.Context, req *EVMRequest) (*UnsignedTransaction, error) {
	if s.network.Kind != chain.KindEVM || s.evm == nil {
		return nil, errors.Wrapf(ErrUnsupportedChain, "no EVM node for %s", s.network.Name)
	}

	if err := validateEVMRequest(req); err != nil {
		return nil, err
	}

	from := common.HexToAddress(req.From)
	recipient := common.HexToAddress(req.To)

	to := recipient
	value := new(big.Int).Set(req.Amount)
	data := append([]byte(nil), req.Metadata...)
	gasLimit := req.GasLimit

	if req.Token != "" {
		to = common.HexToAddress(req.Token)
		value = new(big.Int)
		data = append(EncodeTransfer(recipient, req.Amount), req.Metadata...)

		if gasLimit == 0 {
			gasLimit = DefaultERC20GasLimit + dataGas(req.Metadata)
		}
	} else if gasLimit == 0 {
		gasLimit = DefaultNativeGasLimit + dataGas(data)
	}

	maxFee, tip, err := s.fees(ctx, req)
	if err != nil {
		return nil, err
	}

	nonce, err := s.nonces.Next(ctx, s.evm, s.network.Name, from.Hex())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("chain", s.network.Name).
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Str("max_fee", maxFee.String()).
		Msg("Built EVM transaction")

	return &UnsignedTransaction{EVM: &EVMTx{
		ChainID:              big.NewInt(req.ChainID),
		From:                 from,
		Nonce:                nonce,
		GasLimit:             gasLimit,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
		To:                   to,
		Value:                value,
		Data:                 data,
	}}, nil
}

func validateEVMRequest(req *EVMRequest) error {
	if req == nil {
		return errors.Wrap(ErrInvalidRequest, "nil request")
	}
	if req.ChainID <= 0 {
		return errors.Wrapf(ErrInvalidRequest, "chain id %d", req.ChainID)
	}
	if !common.IsHexAddress(req.From) || !common.IsHexAddress(req.To) {
		return errors.Wrapf(ErrInvalidRequest, "invalid address from=%q to=%q", req.From, req.To)
	}
	if req.Token != "" && !common.IsHexAddress(req.Token) {
		return errors.Wrapf(ErrInvalidRequest, "invalid token address %q", req.Token)
	}
	if req.Amount == nil || req.Amount.Sign() < 0 {
		return errors.Wrap(ErrInvalidAmount, "amount must be zero or positive")
	}

	return nil
}

// fees returns (maxFeePerGas, maxPriorityFeePerGas).
func (s *service) fees(ctx context.Context, req *EVMRequest) (*big.Int, *big.Int, error) {
	switch {
	case req.MaxFeePerGas != nil && req.MaxPriorityFeePerGas != nil:
		if req.MaxPriorityFeePerGas.Cmp(req.MaxFeePerGas) > 0 {
			return nil, nil, errors.Wrap(ErrMissingFeeParams, "priority fee exceeds max fee")
		}
		return new(big.Int).Set(req.MaxFeePerGas), new(big.Int).Set(req.MaxPriorityFeePerGas), nil
	case req.MaxFeePerGas != nil || req.MaxPriorityFeePerGas != nil:
		return nil, nil, errors.Wrap(ErrMissingFeeParams, "both max fee and priority fee are required")
	}

	gasPrice, err := s.evm.GasPrice(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to fetch gas price")
	}

	tip := new(big.Int).Set(PriorityPremium)
	return new(big.Int).Add(gasPrice, tip), tip, nil
}

func dataGas(data []byte) uint64 {
	var gas uint64
	for _, b := range data {
		if b == 0 {
			gas += params.TxDataZeroGas
		} else {
			gas += params.TxDataNonZeroGasEIP2028
		}
	}

	return gas
}
