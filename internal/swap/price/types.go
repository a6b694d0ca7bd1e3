package price

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownSymbol = errors.New("no price for symbol")
	ErrInvalidPrice  = errors.New("price must be positive")
)

// Feed returns the USD price of one whole token, looked up by the token's price feed key
type Feed interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

func checkPrice(symbol string, p decimal.Decimal) (decimal.Decimal, error) {
	if !p.IsPositive() {
		return decimal.Zero, errors.Wrapf(ErrInvalidPrice, "%s: %s", symbol, p)
	}

	return p, nil
}
