package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/api/httperrors"
	"github/chapool/chainswap/internal/api/router"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/types"
)

// DefaultTestConfig returns the env config with an in-memory history, no event broker,
// the test mnemonic and a static price table. No network is enabled.
func DefaultTestConfig(t *testing.T) config.Server {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Keys = config.KeysServer{Mnemonic: Mnemonic, SingleFlight: true}
	cfg.Chains = map[string]config.ChainServer{}
	cfg.RPC.FlatRetryMax = 0
	cfg.RPC.HTTPRetryMax = 0
	cfg.History.Backend = config.HistoryBackendMemory
	cfg.Events.Enabled = false
	cfg.Swap.PriceFeedURL = ""
	cfg.Swap.StaticPrices = map[string]string{"ETH": "2000", "USDC": "1", "SOL": "150", "TRX": "0.25"}
	cfg.Swap.Owner = "chainswap"
	cfg.Swap.Purpose = "swap"
	cfg.Swap.FeeBps = 30
	cfg.Swap.RevertAttempts = 3
	cfg.Swap.RevertWait = time.Millisecond
	cfg.Echo.HideInternalServerErrorDetails = false

	return cfg
}

// WithTestServer runs closure against a fully wired server using DefaultTestConfig.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, DefaultTestConfig(t), closure)
}

// WithTestServerConfigurable runs closure against a fully wired server built from cfg.
// The server is shut down afterwards.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServer(t.Context(), cfg)
	require.NoError(t, err, "failed to init test server")

	router.Init(s)

	closure(s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		t.Logf("Failed to shutdown test server: %v", errs)
	}
}

// PerformRequest sends body as JSON (unless nil) through the server's echo instance.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseBody decodes the JSON response into v.
func ParseResponseBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v), "failed to parse response body")
}

// RequireHTTPError asserts that res carries httpErr's status and error type.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpErr *httperrors.HTTPError) types.PublicHTTPError {
	t.Helper()

	require.Equal(t, httpErr.Code, res.Result().StatusCode, "HTTPError code mismatch: %s", res.Body.String())

	var response types.PublicHTTPError
	ParseResponseBody(t, res, &response)
	require.Equal(t, httpErr.Type, response.Type, "HTTPError type mismatch")

	return response
}
