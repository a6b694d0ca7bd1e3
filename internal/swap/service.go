package swap

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/metrics"
	"github/chapool/chainswap/internal/swap/events"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/swap/price"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
)

const (
	defaultRevertAttempts = 3
	maxFeeBps             = 10_000
)

type service struct {
	cfg       Config
	adapters  *adapter.Registry
	chains    chain.Service
	prices    price.Feed
	history   history.Log
	publisher events.Publisher
	metrics   *metrics.Service
	logger    zerolog.Logger
}

type Option func(*service)

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithMetrics(m *metrics.Service) Option {
	return func(s *service) { s.metrics = m }
}

// NewService wires the orchestrator
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(cfg Config, adapters *adapter.Registry, chains chain.Service, prices price.Feed, records history.Log, opts ...Option) (Service, error) {
	if cfg.Owner == "" {
		return nil, errors.New("swap owner is required")
	}
	if cfg.FeeBps < 0 || cfg.FeeBps >= maxFeeBps {
		return nil, errors.Errorf("fee of %d bps out of range", cfg.FeeBps)
	}
	if cfg.RevertAttempts <= 0 {
		cfg.RevertAttempts = defaultRevertAttempts
	}

	s := &service{
		cfg:       cfg,
		adapters:  adapters,
		chains:    chains,
		prices:    prices,
		history:   records,
		publisher: events.NewNoop(),
		logger:    log.With().Str("component", "swap").Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *service) PoolAddress(ctx context.Context, network string) (string, error) {
	a, err := s.adapters.Get(network)
	if err != nil {
		return "", err
	}

	return a.Address(ctx, s.cfg.Owner, s.cfg.Purpose)
}

// History returns one page of records, newest first. Pages start at 1.
func (s *service) History(ctx context.Context, page int, size int) ([]*history.SwapRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = history.DefaultPageSize
	}

	return s.history.Paginate(ctx, (page-1)*size, size)
}

func (s *service) FindByHash(ctx context.Context, network string, hash string) (*history.SwapRecord, error) {
	if network != "" {
		a, err := s.adapters.Get(network)
		if err != nil {
			return nil, err
		}
		hash = normalizeHash(a.Kind(), hash)
	}

	return s.history.FindByHash(ctx, hash)
}
