package price

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type cachedPrice struct {
	price   decimal.Decimal
	fetched time.Time
}

// CachedFeed keeps prices of an upstream feed for ttl
type CachedFeed struct {
	upstream Feed
	ttl      time.Duration

	mu     sync.RWMutex
	prices map[string]cachedPrice
}

func NewCachedFeed(upstream Feed, ttl time.Duration) *CachedFeed {
	return &CachedFeed{
		upstream: upstream,
		ttl:      ttl,
		prices:   make(map[string]cachedPrice),
	}
}

func (f *CachedFeed) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	key := strings.ToUpper(symbol)

	f.mu.RLock()
	c, ok := f.prices[key]
	f.mu.RUnlock()

	if ok && time.Since(c.fetched) < f.ttl {
		return c.price, nil
	}

	p, err := f.upstream.Price(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	f.mu.Lock()
	f.prices[key] = cachedPrice{price: p, fetched: time.Now()}
	f.mu.Unlock()

	return p, nil
}
