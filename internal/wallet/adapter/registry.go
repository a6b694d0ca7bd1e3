package adapter

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry maps network names to adapters
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ChainAdapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]ChainAdapter)}
}

func (r *Registry) Register(a ChainAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Network().Name
	if _, ok := r.adapters[name]; ok {
		return errors.Errorf("adapter for %s already registered", name)
	}
	r.adapters[name] = a

	return nil
}

//nolint:ireturn
func (r *Registry) Get(network string) (ChainAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[network]
	if !ok {
		return nil, errors.Wrap(ErrUnknownNetwork, network)
	}

	return a, nil
}

// List returns all adapters ordered by network name.
func (r *Registry) List() []ChainAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ChainAdapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Network().Name < out[j].Network().Name
	})

	return out
}
