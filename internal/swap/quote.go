package swap

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

// quotePrecision is the number of decimal places kept while dividing by the output price
const quotePrecision = 36

var bpsDenominator = decimal.NewFromInt(maxFeeBps)

// Quote converts amountIn into the output token at the given USD prices, takes the fee
// and truncates to the output token's decimals.
func Quote(amountIn decimal.Decimal, priceIn decimal.Decimal, priceOut decimal.Decimal, feeBps int64, decimalsOut int32) (decimal.Decimal, error) {
	if !priceIn.IsPositive() || !priceOut.IsPositive() {
		return decimal.Zero, errors.New("prices must be positive")
	}
	if feeBps < 0 || feeBps >= maxFeeBps {
		return decimal.Zero, errors.Errorf("fee of %d bps out of range", feeBps)
	}
	if amountIn.IsNegative() {
		return decimal.Zero, errors.Wrap(txbuilder.ErrInvalidAmount, amountIn.String())
	}

	gross := amountIn.Mul(priceIn).DivRound(priceOut, quotePrecision)
	net := gross.Mul(decimal.NewFromInt(maxFeeBps - feeBps)).DivRound(bpsDenominator, quotePrecision)

	return net.Truncate(decimalsOut), nil
}

// payout is what a verified deposit turns into
type payout struct {
	Token      *chain.Token
	Amount     decimal.Decimal
	AmountBase *big.Int
	Status     history.Status
}

// plan resolves the output token, quotes the deposit and checks the requested minimum.
// Errors wrapping ErrUnsupportedPair, ErrSlippageExceeded or ErrInsufficientLiquidity
// mean the deposit has to be returned.
func (s *service) plan(ctx context.Context, a adapter.ChainAdapter, dep *VerifiedDeposit) (*payout, error) {
	tokenOut, err := s.resolveTokenOut(a.Network(), dep.TokenOut)
	if err != nil {
		return nil, err
	}
	if tokenOut.ID == dep.Token.ID {
		return nil, errors.Wrapf(ErrUnsupportedPair, "%s to itself", tokenOut.Symbol)
	}

	priceIn, err := s.prices.Price(ctx, dep.Token.PriceFeed)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to price %s", dep.Token.Symbol)
	}
	priceOut, err := s.prices.Price(ctx, tokenOut.PriceFeed)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to price %s", tokenOut.Symbol)
	}

	amount, err := Quote(dep.Amount, priceIn, priceOut, s.cfg.FeeBps, tokenOut.Decimals)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, errors.Wrapf(ErrSlippageExceeded, "%s %s quotes to zero %s", dep.Amount, dep.Token.Symbol, tokenOut.Symbol)
	}

	if dep.AmountOut != "" {
		minimum, err := decimal.NewFromString(strings.TrimSpace(dep.AmountOut))
		if err != nil {
			return nil, errors.Wrapf(txbuilder.ErrMalformedMetadata, "minimum amount out %q", dep.AmountOut)
		}
		if amount.LessThan(minimum) {
			return nil, errors.Wrapf(ErrSlippageExceeded, "quoted %s %s, minimum %s", amount, tokenOut.Symbol, minimum)
		}
	}

	base, err := txbuilder.DecimalToBaseUnits(amount, tokenOut.Decimals)
	if err != nil {
		return nil, err
	}

	if err := s.checkLiquidity(ctx, a, tokenOut, base); err != nil {
		return nil, err
	}

	return &payout{
		Token:      tokenOut,
		Amount:     amount,
		AmountBase: base,
		Status:     statusOf(dep.Token, tokenOut),
	}, nil
}

// checkLiquidity makes sure the pool holds base units of token before paying out.
func (s *service) checkLiquidity(ctx context.Context, a adapter.ChainAdapter, token *chain.Token, base *big.Int) error {
	var (
		balance *big.Int
		err     error
	)
	if token.IsNative {
		balance, err = a.NativeBalance(ctx, s.cfg.Owner, s.cfg.Purpose)
	} else {
		balance, err = a.TokenBalance(ctx, s.cfg.Owner, s.cfg.Purpose, token.Address)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to check pool balance of %s", token.Symbol)
	}

	if balance.Cmp(base) < 0 {
		return errors.Wrapf(ErrInsufficientLiquidity, "need %s, have %s base units of %s", base, balance, token.Symbol)
	}

	return nil
}

// resolveTokenOut accepts a token address of the network or its native symbol.
func (s *service) resolveTokenOut(network *chain.Network, tokenOut string) (*chain.Token, error) {
	tokenOut = strings.TrimSpace(tokenOut)
	if tokenOut == "" {
		return nil, errors.Wrap(ErrUnsupportedPair, "no output token requested")
	}

	if strings.EqualFold(tokenOut, network.NativeSymbol) {
		return s.chains.NativeToken(network.Name)
	}

	token, err := s.chains.LookupToken(network.Name, tokenOut)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedPair, "output token %s on %s", tokenOut, network.Name)
	}

	return token, nil
}

func statusOf(in *chain.Token, out *chain.Token) history.Status {
	switch {
	case in.IsNative && !out.IsNative:
		return history.StatusBuy
	case !in.IsNative && out.IsNative:
		return history.StatusSell
	default:
		return history.StatusSwap
	}
}

// tokenRef is how records name a token: its address, or the symbol for the native asset.
func tokenRef(t *chain.Token) string {
	if t.IsNative {
		return t.Symbol
	}

	return t.Address
}

func mustReturnDeposit(err error) bool {
	return errors.Is(err, ErrUnsupportedPair) ||
		errors.Is(err, ErrSlippageExceeded) ||
		errors.Is(err, ErrInsufficientLiquidity) ||
		errors.Is(err, txbuilder.ErrMalformedMetadata)
}
