package txbuilder

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a decimal string such as "1.5" into base units.
// Digits beyond the token's precision are truncated, never rounded.
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q: %v", amount, err)
	}

	return DecimalToBaseUnits(d, decimals)
}

func DecimalToBaseUnits(d decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, errors.Wrapf(ErrInvalidAmount, "negative decimals %d", decimals)
	}
	if d.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidAmount, "negative amount %s", d.String())
	}

	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

func FromBaseUnits(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(v, -decimals)
}
