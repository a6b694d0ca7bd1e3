package api

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/metrics"
	"github/chapool/chainswap/internal/swap"
	"github/chapool/chainswap/internal/swap/events"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/swap/price"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/keystore"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/seed"
)

// InitNewServer creates every component in dependency order and returns a server
// without Echo and Router. Call router.Init afterwards.
func InitNewServer(ctx context.Context, cfg config.Server) (*Server, error) {
	s := NewServer(cfg)
	s.Metrics = metrics.New()
	s.Chains = NewChainService(cfg)

	var err error
	if s.Keys, err = NewKeyService(ctx, cfg, s.Metrics); err != nil {
		return nil, err
	}

	if s.Adapters, err = NewAdapterRegistry(cfg, s.Chains, s.Keys, s.Metrics); err != nil {
		return nil, err
	}

	if s.Prices, err = NewPriceFeed(cfg); err != nil {
		return nil, err
	}

	if s.History, err = NewHistoryLog(ctx, cfg); err != nil {
		return nil, err
	}

	s.Events = NewEventPublisher(cfg)

	s.Swap, err = swap.NewService(swap.Config{
		Owner:          cfg.Swap.Owner,
		Purpose:        cfg.Swap.Purpose,
		FeeBps:         cfg.Swap.FeeBps,
		RevertAttempts: cfg.Swap.RevertAttempts,
		RevertWait:     cfg.Swap.RevertWait,
	}, s.Adapters, s.Chains, s.Prices, s.History,
		swap.WithPublisher(s.Events),
		swap.WithMetrics(s.Metrics),
	)
	if err != nil {
		_ = s.History.Close()
		return nil, errors.Wrap(err, "failed to create swap service")
	}

	return s, nil
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewChainService(cfg config.Server) chain.Service {
	urls := make(map[string][]string, len(cfg.Chains))
	for name, c := range cfg.Chains {
		urls[name] = c.RPCURLs
	}

	return chain.NewService(urls)
}

// NewKeyService picks the signer from the keys config: a remote signer when a URL is set,
// otherwise a local one seeded from the mnemonic or the encrypted keystore file.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKeyService(ctx context.Context, cfg config.Server, m *metrics.Service) (keys.Service, error) {
	opts := []keys.Option{
		keys.WithSingleFlight(cfg.Keys.SingleFlight),
		keys.WithMetrics(m),
	}

	if cfg.Keys.RemoteSignerURL != "" {
		return keys.NewService(keys.NewRemoteSigner(keys.RemoteSignerConfig{
			BaseURL:  cfg.Keys.RemoteSignerURL,
			Token:    cfg.Keys.RemoteSignerToken,
			Timeout:  cfg.RPC.Timeout,
			RetryMax: cfg.RPC.HTTPRetryMax,
		}), opts...), nil
	}

	mnemonic := cfg.Keys.Mnemonic
	if mnemonic == "" && cfg.Keys.KeystoreFile != "" {
		var err error
		mnemonic, err = keystore.NewService(cfg.Keys.KeystoreFile, keystore.DefaultScryptParams()).Load(ctx, cfg.Keys.KeystorePassword)
		if err != nil {
			return nil, errors.Wrap(err, "failed to unlock keystore")
		}
	}

	if mnemonic == "" {
		return nil, errors.New("no key source configured, set KEYS_MNEMONIC, KEYS_KEYSTORE_FILE or KEYS_REMOTE_SIGNER_URL")
	}

	seeds := seed.NewManager()
	if err := seeds.Initialize(mnemonic, cfg.Keys.MnemonicPassphrase); err != nil {
		return nil, errors.Wrap(err, "failed to initialize seed")
	}

	return keys.NewService(keys.NewLocalSigner(seeds), opts...), nil
}

// NewAdapterRegistry creates one adapter per network with configured RPC endpoints.
// Networks without a transaction pipeline are skipped.
func NewAdapterRegistry(cfg config.Server, chains chain.Service, keyStore keys.Service, m *metrics.Service) (*adapter.Registry, error) {
	registry := adapter.NewRegistry()

	for _, network := range chains.GetActiveNetworks() {
		n := *network
		if c, ok := cfg.Chains[n.Name]; ok && c.ChainID != 0 {
			n.ChainID = c.ChainID
		}

		gw, err := rpc.NewGateway(rpc.Config{
			Network:       n.Name,
			URLs:          chains.RPCURLs(n.Name),
			Timeout:       cfg.RPC.Timeout,
			FlatRetryMax:  cfg.RPC.FlatRetryMax,
			FlatRetryWait: cfg.RPC.FlatRetryWait,
			HTTPRetryMax:  cfg.RPC.HTTPRetryMax,
			HTTPWaitMin:   cfg.RPC.HTTPWaitMin,
			HTTPWaitMax:   cfg.RPC.HTTPWaitMax,
			RateLimit:     cfg.RPC.RateLimit,
			RateBurst:     cfg.RPC.RateBurst,
			Metrics:       m,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create RPC gateway for %s", n.Name)
		}

		a, err := adapter.New(&n, gw, keyStore, adapter.WithMetrics(m))
		if errors.Is(err, adapter.ErrUnsupportedChain) {
			log.Warn().Str("network", n.Name).Msg("Network has no transaction pipeline, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// NewPriceFeed returns the cached HTTP feed when a URL is configured, the static price table otherwise.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewPriceFeed(cfg config.Server) (price.Feed, error) {
	if cfg.Swap.PriceFeedURL == "" {
		feed, err := price.NewStaticFeed(cfg.Swap.StaticPrices)
		if err != nil {
			return nil, err
		}
		return feed, nil
	}

	feed, err := price.NewHTTPFeed(price.HTTPFeedConfig{
		BaseURL:  cfg.Swap.PriceFeedURL,
		Timeout:  cfg.Swap.PriceTimeout,
		RetryMax: cfg.RPC.HTTPRetryMax,
		WaitMin:  cfg.RPC.HTTPWaitMin,
		WaitMax:  cfg.RPC.HTTPWaitMax,
	})
	if err != nil {
		return nil, err
	}

	return price.NewCachedFeed(feed, cfg.Swap.PriceCacheTTL), nil
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewHistoryLog(ctx context.Context, cfg config.Server) (history.Log, error) {
	switch cfg.History.Backend {
	case config.HistoryBackendBadger:
		return history.NewBadger(cfg.History.BadgerDir, cfg.History.ClaimTTL)
	case config.HistoryBackendRedis:
		return history.NewRedis(ctx, history.RedisConfig{
			Addr:     cfg.History.RedisAddr,
			Password: cfg.History.RedisPassword,
			DB:       cfg.History.RedisDB,
			Prefix:   cfg.History.RedisPrefix,
			ClaimTTL: cfg.History.ClaimTTL,
		})
	default:
		return history.NewMemory(cfg.History.ClaimTTL), nil
	}
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewEventPublisher(cfg config.Server) events.Publisher {
	if !cfg.Events.Enabled || len(cfg.Events.Brokers) == 0 {
		return events.NewNoop()
	}

	return events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic)
}
