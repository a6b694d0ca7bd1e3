package history_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/swap/history"
)

func record(n int) *history.SwapRecord {
	return &history.SwapRecord{
		SwapID:    uuid.NewString(),
		Network:   "sepolia",
		WalletIn:  "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		WalletOut: "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		TokenIn:   "",
		TokenOut:  "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238",
		AmountIn:  decimal.RequireFromString("0.01"),
		AmountOut: decimal.RequireFromString("25.5"),
		TxHashIn:  fmt.Sprintf("0xin%04d", n),
		TxHashOut: fmt.Sprintf("0xout%04d", n),
		Status:    history.StatusBuy,
		Timestamp: time.Date(2024, 1, 1, 0, 0, n, 0, time.UTC),
	}
}

type factory func(t *testing.T) history.Log

func backends(t *testing.T) map[string]factory {
	t.Helper()

	out := map[string]factory{
		"memory": func(t *testing.T) history.Log {
			t.Helper()
			return history.NewMemory(time.Minute)
		},
		"badger": func(t *testing.T) history.Log {
			t.Helper()
			l, err := history.NewBadger(t.TempDir(), time.Minute)
			require.NoError(t, err)
			t.Cleanup(func() { _ = l.Close() })
			return l
		},
	}

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		out["redis"] = func(t *testing.T) history.Log {
			t.Helper()
			l, err := history.NewRedis(context.Background(), history.RedisConfig{
				Addr:     addr,
				Prefix:   "chainswap-test:" + uuid.NewString(),
				ClaimTTL: time.Minute,
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = l.Close() })
			return l
		}
	}

	return out
}

func TestAppendAndFind(t *testing.T) {
	for name, newLog := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := newLog(t)

			rec := record(1)
			require.NoError(t, l.Append(ctx, rec))

			got, err := l.FindByHash(ctx, rec.TxHashIn)
			require.NoError(t, err)
			assert.Equal(t, rec.SwapID, got.SwapID)
			assert.True(t, rec.AmountIn.Equal(got.AmountIn))
			assert.Equal(t, history.StatusBuy, got.Status)

			got, err = l.FindByHash(ctx, rec.TxHashOut)
			require.NoError(t, err)
			assert.Equal(t, rec.SwapID, got.SwapID)

			_, err = l.FindByHash(ctx, "0xunknown")
			require.ErrorIs(t, err, history.ErrNotFound)
		})
	}
}

func TestAppendRejectsKnownHashes(t *testing.T) {
	for name, newLog := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := newLog(t)

			first := record(1)
			require.NoError(t, l.Append(ctx, first))

			again := record(2)
			again.TxHashIn = first.TxHashIn
			require.ErrorIs(t, l.Append(ctx, again), history.ErrDuplicate)

			// the outbound hash of an earlier record counts as well
			crossed := record(3)
			crossed.TxHashIn = first.TxHashOut
			require.ErrorIs(t, l.Append(ctx, crossed), history.ErrDuplicate)

			_, total, err := l.Paginate(ctx, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, 1, total)
		})
	}
}

func TestAppendValidates(t *testing.T) {
	l := history.NewMemory(0)

	require.Error(t, l.Append(context.Background(), nil))

	rec := record(1)
	rec.TxHashIn = ""
	require.Error(t, l.Append(context.Background(), rec))
}

func TestConcurrentAppendSingleWinner(t *testing.T) {
	for name, newLog := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := newLog(t)

			const workers = 16
			var wg sync.WaitGroup
			var ok atomic.Int32

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()

					rec := record(i)
					rec.TxHashIn = "0xsame"
					if err := l.Append(ctx, rec); err == nil {
						ok.Add(1)
					} else {
						assert.ErrorIs(t, err, history.ErrDuplicate)
					}
				}(i)
			}
			wg.Wait()

			assert.Equal(t, int32(1), ok.Load())
		})
	}
}

func TestPaginateNewestFirst(t *testing.T) {
	for name, newLog := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := newLog(t)

			for i := 1; i <= 5; i++ {
				require.NoError(t, l.Append(ctx, record(i)))
			}

			page, total, err := l.Paginate(ctx, 0, 2)
			require.NoError(t, err)
			assert.Equal(t, 5, total)
			require.Len(t, page, 2)
			assert.Equal(t, "0xin0005", page[0].TxHashIn)
			assert.Equal(t, "0xin0004", page[1].TxHashIn)

			page, _, err = l.Paginate(ctx, 4, 2)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, "0xin0001", page[0].TxHashIn)

			page, _, err = l.Paginate(ctx, 10, 2)
			require.NoError(t, err)
			assert.Empty(t, page)
		})
	}
}

func TestClaim(t *testing.T) {
	for name, newLog := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := newLog(t)

			release, err := l.Claim(ctx, "0xin0001")
			require.NoError(t, err)

			_, err = l.Claim(ctx, "0xin0001")
			require.ErrorIs(t, err, history.ErrClaimed)

			release()
			release()

			release, err = l.Claim(ctx, "0xin0001")
			require.NoError(t, err)

			require.NoError(t, l.Append(ctx, record(1)))
			release()

			_, err = l.Claim(ctx, "0xin0001")
			require.ErrorIs(t, err, history.ErrDuplicate)
		})
	}
}

func TestMemoryClaimExpires(t *testing.T) {
	l := history.NewMemory(time.Millisecond)

	_, err := l.Claim(context.Background(), "0xabc")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		release, err := l.Claim(context.Background(), "0xabc")
		if err != nil {
			return false
		}
		release()
		return true
	}, time.Second, 5*time.Millisecond)
}

func TestHold(t *testing.T) {
	for name, newLog := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := newLog(t)

			release, err := l.Claim(ctx, "0xin0001")
			require.NoError(t, err)

			require.NoError(t, l.Hold(ctx, "0xin0001", "payout outcome unknown"))
			release()

			_, err = l.Claim(ctx, "0xin0001")
			require.ErrorIs(t, err, history.ErrDuplicate)
			assert.Contains(t, err.Error(), "payout outcome unknown")

			require.NoError(t, l.Unhold(ctx, "0xin0001"))
			require.NoError(t, l.Unhold(ctx, "0xin0001"))

			release, err = l.Claim(ctx, "0xin0001")
			require.NoError(t, err)
			release()
		})
	}
}

func TestHoldOutlivesClaimTTL(t *testing.T) {
	ctx := context.Background()
	l := history.NewMemory(10 * time.Millisecond)

	_, err := l.Claim(ctx, "0xabc")
	require.NoError(t, err)
	require.NoError(t, l.Hold(ctx, "0xabc", "revert failed"))

	time.Sleep(50 * time.Millisecond)

	_, err = l.Claim(ctx, "0xabc")
	require.ErrorIs(t, err, history.ErrDuplicate)
}

func TestBadgerHoldPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l, err := history.NewBadger(dir, time.Minute)
	require.NoError(t, err)
	require.NoError(t, l.Hold(ctx, "0xabc", "revert failed"))
	require.NoError(t, l.Close())

	l, err = history.NewBadger(dir, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	_, err = l.Claim(ctx, "0xabc")
	require.ErrorIs(t, err, history.ErrDuplicate)
}

func TestBadgerPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l, err := history.NewBadger(dir, time.Minute)
	require.NoError(t, err)
	require.NoError(t, l.Append(ctx, record(1)))
	require.NoError(t, l.Close())

	l, err = history.NewBadger(dir, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	require.NoError(t, l.Append(ctx, record(2)))
	require.ErrorIs(t, l.Append(ctx, record(1)), history.ErrDuplicate)

	page, total, err := l.Paginate(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "0xin0002", page[0].TxHashIn)
}
