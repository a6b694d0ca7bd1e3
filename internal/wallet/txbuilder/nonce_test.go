package txbuilder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

func TestNonceTrackerMonotonic(t *testing.T) {
	ctx := context.Background()
	node := &fakeEVMNode{pending: 5}
	tracker := txbuilder.NewNonceTracker()

	next := func() uint64 {
		n, err := tracker.Next(ctx, node, "sepolia", "0xAbC")
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, uint64(5), next())
	// node has not seen our broadcast yet
	assert.Equal(t, uint64(6), next())

	node.setPending(10)
	assert.Equal(t, uint64(10), next())

	// address case does not matter
	n, err := tracker.Next(ctx, node, "sepolia", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), n)

	// networks are tracked separately
	n, err = tracker.Next(ctx, node, "ethereum", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)

	tracker.Reset("sepolia", "0xABC")
	node.setPending(7)
	assert.Equal(t, uint64(7), next())
}

func TestNonceTrackerRelease(t *testing.T) {
	ctx := context.Background()
	node := &fakeEVMNode{pending: 4}
	tracker := txbuilder.NewNonceTracker()

	n, err := tracker.Next(ctx, node, "sepolia", "0xabc")
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)

	tracker.Release("sepolia", "0xabc", n)

	again, err := tracker.Next(ctx, node, "sepolia", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), again)

	later, err := tracker.Next(ctx, node, "sepolia", "0xabc")
	require.NoError(t, err)
	require.Equal(t, uint64(5), later)

	// a nonce that is no longer the latest stays consumed
	tracker.Release("sepolia", "0xabc", again)
	n, err = tracker.Next(ctx, node, "sepolia", "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)

	zero := txbuilder.NewNonceTracker()
	node.setPending(0)
	n, err = zero.Next(ctx, node, "sepolia", "0xdef")
	require.NoError(t, err)
	zero.Release("sepolia", "0xdef", n)
	n, err = zero.Next(ctx, node, "sepolia", "0xdef")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}
