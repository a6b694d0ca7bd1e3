package txbuilder

import (
	"github/chapool/chainswap/internal/wallet/chain"
)

type Option func(*service)

func WithEVMNode(node EVMNode) Option {
	return func(s *service) { s.evm = node }
}

func WithSolanaNode(node SolanaNode) Option {
	return func(s *service) { s.solana = node }
}

func WithTronNode(node TronNode) Option {
	return func(s *service) { s.tron = node }
}

// WithNonceTracker shares a tracker between builders of the same network.
func WithNonceTracker(t *NonceTracker) Option {
	return func(s *service) { s.nonces = t }
}

type service struct {
	network *chain.Network
	evm     EVMNode
	solana  SolanaNode
	tron    TronNode
	nonces  *NonceTracker
}

// NewService creates a builder for network. Only the node matching the network's kind is used.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(network *chain.Network, opts ...Option) Service {
	s := &service{network: network}
	for _, opt := range opts {
		opt(s)
	}

	if s.nonces == nil {
		s.nonces = NewNonceTracker()
	}

	return s
}

func (s *service) ResetNonce(addr string) {
	s.nonces.Reset(s.network.Name, addr)
}

func (s *service) ReleaseNonce(addr string, nonce uint64) {
	s.nonces.Release(s.network.Name, addr, nonce)
}
