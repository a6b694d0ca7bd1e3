package swaps_test

import (
	"context"
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/api/httperrors"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/test"
	"github/chapool/chainswap/internal/types"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

const (
	sender      = "0x9858effd232b4033e47d90003d41ec34ecaeda94"
	usdcSepolia = "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"
	depositHash = "0xabc1"
)

// withSepolia runs closure against a server whose sepolia endpoint is stub.
func withSepolia(t *testing.T, closure func(s *api.Server, stub *test.RPCStub)) {
	t.Helper()

	stub := test.NewRPCStub(t)

	cfg := test.DefaultTestConfig(t)
	cfg.Chains = map[string]config.ChainServer{
		"sepolia": {Network: "sepolia", RPCURLs: []string{stub.URL()}},
	}

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		closure(s, stub)
	})
}

func poolAddress(t *testing.T, s *api.Server) string {
	t.Helper()

	pool, err := s.Swap.PoolAddress(context.Background(), "sepolia")
	require.NoError(t, err)

	return pool
}

// stubDeposit scripts a confirmed 0.01 ETH transfer from sender to to, asking for USDC.
func stubDeposit(t *testing.T, stub *test.RPCStub, to string) {
	t.Helper()

	meta, err := txbuilder.EncodeMetadata(usdcSepolia, "")
	require.NoError(t, err)

	stub.HandleResult("eth_getTransactionByHash", map[string]any{
		"hash":  depositHash,
		"from":  sender,
		"to":    to,
		"value": "0x2386f26fc10000",
		"input": hexutil.Encode(meta),
	})
	stub.HandleResult("eth_getTransactionReceipt", map[string]any{
		"transactionHash": depositHash,
		"status":          "0x1",
		"logs":            []any{},
	})
}

func TestGetAddress(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/address/sepolia", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body types.AddressResponse
		test.ParseResponseBody(t, res, &body)

		assert.Equal(t, "sepolia", body.Network)
		assert.Equal(t, "evm", body.Kind)
		assert.Equal(t, poolAddress(t, s), body.Address)
	})
}

func TestGetAddressUnknownNetwork(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/address/bitcoin", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundNetwork)
	})
}

func TestPostSwapValidation(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/swaps", types.PostSwapPayload{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var body types.PublicHTTPError
		test.ParseResponseBody(t, res, &body)
		assert.Len(t, body.ValidationErrors, 2)
	})
}

func TestPostSwapVerifyOnly(t *testing.T) {
	withSepolia(t, func(s *api.Server, stub *test.RPCStub) {
		stubDeposit(t, stub, poolAddress(t, s))

		res := test.PerformRequest(t, s, "POST", "/api/v1/swaps", types.PostSwapPayload{
			Network:    "sepolia",
			TxHash:     "0xABC1",
			VerifyOnly: true,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var body types.DepositResponse
		test.ParseResponseBody(t, res, &body)

		assert.Equal(t, "0.01", body.Amount.String())
		assert.Equal(t, "ETH", body.Token)
		assert.Equal(t, depositHash, body.TxHash)
		assert.Equal(t, usdcSepolia, body.TokenOut)
		assert.Zero(t, stub.Calls("eth_sendRawTransaction"))
	})
}

func TestPostSwapProcess(t *testing.T) {
	withSepolia(t, func(s *api.Server, stub *test.RPCStub) {
		stubDeposit(t, stub, poolAddress(t, s))
		stub.HandleResult("eth_getTransactionCount", "0x0")
		stub.HandleResult("eth_gasPrice", "0x3b9aca00")
		stub.HandleResult("eth_call", common.BigToHash(big.NewInt(1_000_000_000)).Hex()) // 1000 USDC in the pool
		stub.EchoRawTransactions()

		payload := types.PostSwapPayload{Network: "sepolia", TxHash: depositHash}

		res := test.PerformRequest(t, s, "POST", "/api/v1/swaps", payload, nil)
		require.Equal(t, http.StatusCreated, res.Result().StatusCode, res.Body.String())

		var rec types.SwapRecord
		test.ParseResponseBody(t, res, &rec)

		assert.Equal(t, "buy", rec.Status)
		assert.Equal(t, "ETH", rec.TokenIn)
		assert.Equal(t, usdcSepolia, rec.TokenOut)
		assert.Equal(t, "0.01", rec.AmountIn.String())
		assert.Equal(t, "19.94", rec.AmountOut.String())
		assert.Equal(t, depositHash, rec.TxHashIn)
		assert.NotEmpty(t, rec.TxHashOut)
		assert.Equal(t, 1, stub.Calls("eth_sendRawTransaction"))

		res = test.PerformRequest(t, s, "POST", "/api/v1/swaps", payload, nil)
		test.RequireHTTPError(t, res, httperrors.ErrConflictProcessed)
		assert.Equal(t, 1, stub.Calls("eth_sendRawTransaction"))

		res = test.PerformRequest(t, s, "GET", "/api/v1/swaps?page=1&size=10", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var list types.SwapListResponse
		test.ParseResponseBody(t, res, &list)
		assert.Equal(t, 1, list.Total)
		require.Len(t, list.Records, 1)
		assert.Equal(t, rec.SwapID, list.Records[0].SwapID)

		res = test.PerformRequest(t, s, "GET", "/api/v1/swaps/0xABC1?network=sepolia", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var found types.SwapRecord
		test.ParseResponseBody(t, res, &found)
		assert.Equal(t, rec.SwapID, found.SwapID)

		res = test.PerformRequest(t, s, "GET", "/api/v1/swaps/"+rec.TxHashOut, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestPostSwapNotOurDeposit(t *testing.T) {
	withSepolia(t, func(s *api.Server, stub *test.RPCStub) {
		stubDeposit(t, stub, sender)

		res := test.PerformRequest(t, s, "POST", "/api/v1/swaps", types.PostSwapPayload{Network: "sepolia", TxHash: depositHash}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrUnprocessableNotOurs)
		assert.Zero(t, stub.Calls("eth_sendRawTransaction"))
	})
}

func TestPostSwapPendingTransaction(t *testing.T) {
	withSepolia(t, func(s *api.Server, stub *test.RPCStub) {
		stub.HandleResult("eth_getTransactionByHash", map[string]any{"from": sender, "to": poolAddress(t, s), "value": "0x1", "input": "0x"})
		stub.HandleResult("eth_getTransactionReceipt", nil)

		res := test.PerformRequest(t, s, "POST", "/api/v1/swaps", types.PostSwapPayload{Network: "sepolia", TxHash: depositHash}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundTransaction)
	})
}

func TestPostSwapUnknownNetwork(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/swaps", types.PostSwapPayload{Network: "ethereum", TxHash: depositHash}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundNetwork)
	})
}

func TestGetSwapNotFound(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/swaps/0xdead", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundSwap)
	})
}

func TestGetSwapsInvalidQuery(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/swaps?page=abc", nil, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/api/v1/swaps", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var list types.SwapListResponse
		test.ParseResponseBody(t, res, &list)
		assert.Zero(t, list.Total)
		assert.Empty(t, list.Records)
		assert.Equal(t, 1, list.Page)
	})
}

func TestGetChains(t *testing.T) {
	withSepolia(t, func(s *api.Server, _ *test.RPCStub) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/chains", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body types.GetChainsResponse
		test.ParseResponseBody(t, res, &body)

		require.Len(t, body.Chains, 1)
		assert.Equal(t, "sepolia", body.Chains[0].Name)
		assert.Equal(t, int64(11155111), body.Chains[0].ChainID)
		require.Len(t, body.Chains[0].Tokens, 2)
		assert.True(t, body.Chains[0].Tokens[0].IsNative)
		assert.Equal(t, "USDC", body.Chains[0].Tokens[1].Symbol)
	})
}
