package price

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// StaticFeed serves prices fixed at startup
type StaticFeed struct {
	prices map[string]decimal.Decimal
}

// NewStaticFeed parses symbol -> decimal string pairs. Symbols are case-insensitive.
func NewStaticFeed(prices map[string]string) (*StaticFeed, error) {
	f := &StaticFeed{prices: make(map[string]decimal.Decimal, len(prices))}

	for symbol, raw := range prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid price for %s", symbol)
		}
		if _, err := checkPrice(symbol, p); err != nil {
			return nil, err
		}
		f.prices[strings.ToUpper(symbol)] = p
	}

	return f, nil
}

func (f *StaticFeed) Price(_ context.Context, symbol string) (decimal.Decimal, error) {
	p, ok := f.prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, errors.Wrap(ErrUnknownSymbol, symbol)
	}

	return p, nil
}
