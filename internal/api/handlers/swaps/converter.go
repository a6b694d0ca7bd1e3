package swaps

import (
	"github/chapool/chainswap/internal/swap"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/types"
	"github/chapool/chainswap/internal/wallet/chain"
)

func toSwapRecord(rec *history.SwapRecord) *types.SwapRecord {
	return &types.SwapRecord{
		SwapID:    rec.SwapID,
		Network:   rec.Network,
		WalletIn:  rec.WalletIn,
		WalletOut: rec.WalletOut,
		TokenIn:   rec.TokenIn,
		TokenOut:  rec.TokenOut,
		AmountIn:  rec.AmountIn,
		AmountOut: rec.AmountOut,
		TxHashIn:  rec.TxHashIn,
		TxHashOut: rec.TxHashOut,
		Status:    string(rec.Status),
		Reason:    rec.Reason,
		Timestamp: rec.Timestamp,
	}
}

func toDepositResponse(dep *swap.VerifiedDeposit) *types.DepositResponse {
	res := &types.DepositResponse{
		Network:      dep.Network,
		TxHash:       dep.TxHash,
		Sender:       dep.Sender,
		Recipient:    dep.Recipient,
		TokenAddress: dep.TokenAddress,
		Amount:       dep.Amount,
		TokenOut:     dep.TokenOut,
		AmountOut:    dep.AmountOut,
	}
	if dep.Token != nil {
		res.Token = dep.Token.Symbol
	}

	return res
}

func toChainItem(n *chain.Network, tokens []*chain.Token) *types.ChainItem {
	item := &types.ChainItem{
		Name:         n.Name,
		Kind:         string(n.Kind),
		ChainID:      n.ChainID,
		NativeSymbol: n.NativeSymbol,
		Testnet:      n.Testnet,
		Tokens:       make([]*types.TokenItem, 0, len(tokens)),
	}

	for _, t := range tokens {
		item.Tokens = append(item.Tokens, &types.TokenItem{
			Symbol:   t.Symbol,
			Name:     t.Name,
			Address:  t.Address,
			Decimals: t.Decimals,
			IsNative: t.IsNative,
		})
	}

	return item
}
