package adapter

import (
	"github/chapool/chainswap/internal/metrics"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

type options struct {
	metrics *metrics.Service
	nonces  *txbuilder.NonceTracker
}

type Option func(*options)

func WithMetrics(m *metrics.Service) Option {
	return func(o *options) { o.metrics = m }
}

// WithNonceTracker shares nonce state, e.g. between adapters created for the same network.
func WithNonceTracker(t *txbuilder.NonceTracker) Option {
	return func(o *options) { o.nonces = t }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.nonces == nil {
		o.nonces = txbuilder.NewNonceTracker()
	}

	return o
}
