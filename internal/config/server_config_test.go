package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestDefaultHistoryBackend(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	assert.Contains(t, []string{config.HistoryBackendMemory, config.HistoryBackendBadger, config.HistoryBackendRedis}, cfg.History.Backend)
	assert.Positive(t, cfg.RPC.FlatRetryMax)
}

func TestDotEnvLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("RPC_ETHEREUM_URLS=http://a,http://b\nSWAP_FEE_BPS=25\n"), 0o600))

	got := map[string]string{}
	err := config.DotEnvLoad(path, func(k, v string) error {
		got[k] = v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "http://a,http://b", got["RPC_ETHEREUM_URLS"])
	assert.Equal(t, "25", got["SWAP_FEE_BPS"])
}

func TestDotEnvTryLoadMissingFile(t *testing.T) {
	called := false
	config.DotEnvTryLoad(filepath.Join(t.TempDir(), "missing.env"), func(string, string) error {
		called = true
		return nil
	})
	assert.False(t, called)
}
