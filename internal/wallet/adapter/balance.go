package adapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

func (a *evmAdapter) NativeBalance(ctx context.Context, owner string, purpose string) (*big.Int, error) {
	addr, err := a.Address(ctx, owner, purpose)
	if err != nil {
		return nil, err
	}

	balance, err := a.node.GetBalance(ctx, addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch balance")
	}

	return balance, nil
}

// TokenBalance asks the ERC20 contract for balanceOf the derived address.
func (a *evmAdapter) TokenBalance(ctx context.Context, owner string, purpose string, token string) (*big.Int, error) {
	if !common.IsHexAddress(token) {
		return nil, errors.Wrapf(txbuilder.ErrInvalidRequest, "token %q is not a contract address", token)
	}

	addr, err := a.Address(ctx, owner, purpose)
	if err != nil {
		return nil, err
	}

	out, err := a.node.Call(ctx, token, txbuilder.EncodeBalanceOf(common.HexToAddress(addr)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch token balance")
	}

	balance, err := txbuilder.DecodeUint256(out)
	if err != nil {
		return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "eth_call", Message: "balanceOf", Err: err}
	}

	return balance, nil
}

func (a *solanaAdapter) NativeBalance(ctx context.Context, owner string, purpose string) (*big.Int, error) {
	addr, err := a.Address(ctx, owner, purpose)
	if err != nil {
		return nil, err
	}

	account, err := a.node.GetAccountInfo(ctx, addr)
	if rpc.KindOf(err) == rpc.KindNotFound {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch account")
	}

	return new(big.Int).SetUint64(account.Lamports), nil
}

func (a *tronAdapter) NativeBalance(ctx context.Context, owner string, purpose string) (*big.Int, error) {
	addr, err := a.Address(ctx, owner, purpose)
	if err != nil {
		return nil, err
	}

	addrHex, err := address.TronToHex(addr)
	if err != nil {
		return nil, err
	}

	account, err := a.node.GetAccount(ctx, addrHex)
	if rpc.KindOf(err) == rpc.KindNotFound {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch account")
	}

	return big.NewInt(account.Balance), nil
}

func (a *solanaAdapter) TokenBalance(context.Context, string, string, string) (*big.Int, error) {
	return nil, ErrUnsupportedToken
}

func (a *tronAdapter) TokenBalance(context.Context, string, string, string) (*big.Int, error) {
	return nil, ErrUnsupportedToken
}
