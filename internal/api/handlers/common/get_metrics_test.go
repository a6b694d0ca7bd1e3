package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/test"
)

func TestGetMetrics(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		s.Metrics.SwapRecorded("sepolia", "buy")

		res := test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Contains(t, res.Body.String(), `chainswap_swap_records_total{network="sepolia",status="buy"} 1`)
		assert.Contains(t, res.Body.String(), "go_goroutines")
	})
}
