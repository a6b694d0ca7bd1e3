package rpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/test"
	"github/chapool/chainswap/internal/wallet/rpc"
)

func newGateway(t *testing.T, urls ...string) *rpc.Gateway {
	t.Helper()

	gw, err := rpc.NewGateway(rpc.Config{
		Network:      "sepolia",
		URLs:         urls,
		Timeout:      5 * time.Second,
		FlatRetryMax: 3,
		HTTPRetryMax: 0,
	})
	require.NoError(t, err)

	return gw
}

func TestNewGatewayRequiresURL(t *testing.T) {
	_, err := rpc.NewGateway(rpc.Config{Network: "sepolia"})
	require.Error(t, err)
}

func TestCallDecodesResult(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_chainId", "0xaa36a7")

	gw := newGateway(t, stub.URL())

	var out string
	require.NoError(t, gw.Call(context.Background(), "eth_chainId", nil, &out))
	assert.Equal(t, "0xaa36a7", out)
	assert.Equal(t, 1, stub.Calls("eth_chainId"))
}

func TestCallRetriesTransientErrors(t *testing.T) {
	stub := test.NewRPCStub(t)

	var calls atomic.Int32
	stub.Handle("eth_gasPrice", func(json.RawMessage) (any, *test.RPCError) {
		if calls.Add(1) < 3 {
			return nil, &test.RPCError{Code: -32000, Message: "No consensus could be reached"}
		}
		return "0x3b9aca00", nil
	})

	gw := newGateway(t, stub.URL())

	var out string
	require.NoError(t, gw.Call(context.Background(), "eth_gasPrice", nil, &out))
	assert.Equal(t, "0x3b9aca00", out)
	assert.Equal(t, 3, stub.Calls("eth_gasPrice"))
}

func TestCallConsensusUnreachable(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleError("eth_gasPrice", -32000, "SysTransient: replica timeout")

	gw := newGateway(t, stub.URL())

	err := gw.Call(context.Background(), "eth_gasPrice", nil, nil)
	require.Error(t, err)
	assert.Equal(t, rpc.KindConsensusUnreachable, rpc.KindOf(err))
	assert.True(t, errors.Is(err, rpc.ErrConsensusUnreachable))

	// initial attempt plus FlatRetryMax retries
	assert.Equal(t, 4, stub.Calls("eth_gasPrice"))
}

func TestCallSurfacesRPCErrorImmediately(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleError("eth_sendRawTransaction", -32000, "insufficient funds for gas * price + value")

	gw := newGateway(t, stub.URL())

	err := gw.Call(context.Background(), "eth_sendRawTransaction", []any{"0x02"}, nil)
	require.Error(t, err)

	var rpcErr *rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, rpc.KindRPC, rpcErr.Kind)
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, 1, stub.Calls("eth_sendRawTransaction"))
}

func TestCallIdempotentError(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleError("eth_sendRawTransaction", -32000, "already known")

	gw := newGateway(t, stub.URL())

	err := gw.Call(context.Background(), "eth_sendRawTransaction", []any{"0x02"}, nil)
	assert.True(t, rpc.IsIdempotent(err))
	assert.Equal(t, 1, stub.Calls("eth_sendRawTransaction"))
}

func TestCallServerErrorIsTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	gw, err := rpc.NewGateway(rpc.Config{
		Network:      "sepolia",
		URLs:         []string{srv.URL},
		FlatRetryMax: 1,
		HTTPRetryMax: 0,
	})
	require.NoError(t, err)

	err = gw.Call(context.Background(), "eth_blockNumber", nil, nil)
	assert.Equal(t, rpc.KindConsensusUnreachable, rpc.KindOf(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestCallHTTPLayerRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x10"}`))
	}))
	t.Cleanup(srv.Close)

	gw, err := rpc.NewGateway(rpc.Config{
		Network:      "sepolia",
		URLs:         []string{srv.URL},
		FlatRetryMax: 0,
		HTTPRetryMax: 3,
		HTTPWaitMin:  time.Millisecond,
		HTTPWaitMax:  4 * time.Millisecond,
	})
	require.NoError(t, err)

	var out string
	require.NoError(t, gw.Call(context.Background(), "eth_blockNumber", nil, &out))
	assert.Equal(t, "0x10", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCallRotatesEndpoints(t *testing.T) {
	var downCalls atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		downCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(down.Close)

	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_blockNumber", "0x20")

	gw := newGateway(t, down.URL, stub.URL())

	var out string
	require.NoError(t, gw.Call(context.Background(), "eth_blockNumber", nil, &out))
	assert.Equal(t, "0x20", out)
	assert.Equal(t, int32(1), downCalls.Load())

	// the healthy endpoint stays current
	require.NoError(t, gw.Call(context.Background(), "eth_blockNumber", nil, &out))
	assert.Equal(t, int32(1), downCalls.Load())
}

func TestCallHonorsContext(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleError("eth_gasPrice", -32000, "No consensus")

	gw, err := rpc.NewGateway(rpc.Config{
		Network:       "sepolia",
		URLs:          []string{stub.URL()},
		FlatRetryMax:  10,
		FlatRetryWait: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = gw.Call(ctx, "eth_gasPrice", nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, stub.Calls("eth_gasPrice"))
}

func TestCallDecodeError(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_chainId", map[string]any{"unexpected": true})

	gw := newGateway(t, stub.URL())

	var out string
	err := gw.Call(context.Background(), "eth_chainId", nil, &out)
	assert.Equal(t, rpc.KindDecode, rpc.KindOf(err))
}
