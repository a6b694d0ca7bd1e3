package history

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type memoryLog struct {
	mu       sync.Mutex
	records  []*SwapRecord
	index    map[string]int
	claims   map[string]time.Time
	held     map[string]string
	claimTTL time.Duration
}

// NewMemory returns a process local Log.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewMemory(claimTTL time.Duration) Log {
	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}

	return &memoryLog{
		index:    make(map[string]int),
		claims:   make(map[string]time.Time),
		held:     make(map[string]string),
		claimTTL: claimTTL,
	}
}

func (m *memoryLog) Append(_ context.Context, rec *SwapRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range rec.Hashes() {
		if _, ok := m.index[h]; ok {
			return errors.Wrapf(ErrDuplicate, "hash %s", h)
		}
	}

	stored := *rec
	m.records = append(m.records, &stored)
	for _, h := range rec.Hashes() {
		m.index[h] = len(m.records) - 1
	}

	return nil
}

func (m *memoryLog) FindByHash(_ context.Context, hash string) (*SwapRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[hash]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "hash %s", hash)
	}

	rec := *m.records[i]
	return &rec, nil
}

func (m *memoryLog) Paginate(_ context.Context, offset int, limit int) ([]*SwapRecord, int, error) {
	offset, limit = clampPage(offset, limit)

	m.mu.Lock()
	defer m.mu.Unlock()

	total := len(m.records)
	out := make([]*SwapRecord, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		rec := *m.records[i]
		out = append(out, &rec)
	}

	return out, total, nil
}

func (m *memoryLog) Claim(_ context.Context, hash string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[hash]; ok {
		return nil, errors.Wrapf(ErrDuplicate, "hash %s", hash)
	}
	if reason, ok := m.held[hash]; ok {
		return nil, heldError(hash, reason)
	}

	now := time.Now()
	if expires, ok := m.claims[hash]; ok && now.Before(expires) {
		return nil, errors.Wrapf(ErrClaimed, "hash %s", hash)
	}

	expires := now.Add(m.claimTTL)
	m.claims[hash] = expires

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			// a reservation that expired may have been taken over
			if m.claims[hash].Equal(expires) {
				delete(m.claims, hash)
			}
		})
	}, nil
}

func (m *memoryLog) Hold(_ context.Context, hash string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.held[hash] = reason

	return nil
}

func (m *memoryLog) Unhold(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, hash)

	return nil
}

func (m *memoryLog) Close() error {
	return nil
}
