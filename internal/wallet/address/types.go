package address

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
)

var (
	ErrMalformedPublicKey = errors.New("malformed public key")
	ErrUnsupportedChain   = errors.New("unsupported chain kind")
	ErrInvalidAddress     = errors.New("invalid address")
)

// BitcoinFormat selects the bitcoin output type an address is produced for
type BitcoinFormat string

const (
	BitcoinP2PKH BitcoinFormat = "p2pkh"
	BitcoinP2TR  BitcoinFormat = "p2tr"
)

type options struct {
	bitcoinFormat BitcoinFormat
	bitcoinParams *chaincfg.Params
}

type Option func(*options)

func WithBitcoinFormat(f BitcoinFormat) Option {
	return func(o *options) { o.bitcoinFormat = f }
}

func WithBitcoinParams(p *chaincfg.Params) Option {
	return func(o *options) { o.bitcoinParams = p }
}

func newOptions(opts []Option) *options {
	o := &options{
		bitcoinFormat: BitcoinP2PKH,
		bitcoinParams: &chaincfg.MainNetParams,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}
