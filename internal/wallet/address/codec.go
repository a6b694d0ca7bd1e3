package address

import (
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
)

// ToAddress converts a derived public key into the address string of the chain family.
// EVM addresses are returned lower-cased, use Checksum for display.
func ToAddress(pub []byte, kind chain.Kind, opts ...Option) (string, error) {
	switch kind {
	case chain.KindEVM:
		return evmAddress(pub)
	case chain.KindSolana:
		return solanaAddress(pub)
	case chain.KindTron:
		return tronAddress(pub)
	case chain.KindBitcoin:
		return bitcoinAddress(pub, newOptions(opts))
	default:
		return "", errors.Wrapf(ErrUnsupportedChain, "kind %q", kind)
	}
}

// Validate checks that addr is well formed for the chain family.
func Validate(addr string, kind chain.Kind, opts ...Option) error {
	switch kind {
	case chain.KindEVM:
		return validateEVM(addr)
	case chain.KindSolana:
		return validateSolana(addr)
	case chain.KindTron:
		_, err := ParseTron(addr)
		return err
	case chain.KindBitcoin:
		return validateBitcoin(addr, newOptions(opts))
	default:
		return errors.Wrapf(ErrUnsupportedChain, "kind %q", kind)
	}
}

// Normalize returns the canonical form used for comparisons.
func Normalize(addr string, kind chain.Kind) string {
	if kind == chain.KindEVM {
		return normalizeEVM(addr)
	}

	return addr
}
