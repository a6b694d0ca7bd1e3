package txbuilder

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/rpc"
)

// NonceTracker hands out nonces that never go backwards within a process,
// even when the node's pending count lags behind our own broadcasts.
type NonceTracker struct {
	mu   sync.Mutex
	last map[string]uint64
}

func NewNonceTracker() *NonceTracker {
	return &NonceTracker{last: make(map[string]uint64)}
}

// Next returns max(pending, last+1) for the sender and records it.
func (t *NonceTracker) Next(ctx context.Context, node EVMNode, network string, addr string) (uint64, error) {
	pending, err := node.GetTransactionCount(ctx, addr, rpc.BlockPending)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fetch pending nonce")
	}

	key := nonceKey(network, addr)

	t.mu.Lock()
	defer t.mu.Unlock()

	next := pending
	if last, ok := t.last[key]; ok && last+1 > next {
		next = last + 1
	}
	t.last[key] = next

	return next, nil
}

// Release hands nonce back when the transaction built with it was never broadcast.
// Nothing changes if a later nonce was handed out in the meantime.
func (t *NonceTracker) Release(network string, addr string, nonce uint64) {
	key := nonceKey(network, addr)

	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[key]
	if !ok || last != nonce {
		return
	}

	if nonce == 0 {
		delete(t.last, key)
		return
	}
	t.last[key] = nonce - 1
}

// Reset forgets the sender so the next nonce comes from the node again.
// Used after a broadcast was definitively rejected.
func (t *NonceTracker) Reset(network string, addr string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.last, nonceKey(network, addr))
}

func nonceKey(network string, addr string) string {
	return network + ":" + strings.ToLower(addr)
}
