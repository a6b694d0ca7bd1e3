package keys_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/wallet/keys"
)

func TestRemoteSigner(t *testing.T) {
	var signCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req["owner"])

		switch r.URL.Path {
		case "/v1/keys/public":
			_ = json.NewEncoder(w).Encode(map[string]string{"public_key": hexutil.Encode([]byte{0x04, 0x01})})
		case "/v1/sign":
			signCalls.Add(1)
			assert.Equal(t, hexutil.Encode([]byte("digest")), req["payload"])
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "quorum lost"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	signer := keys.NewRemoteSigner(keys.RemoteSignerConfig{BaseURL: srv.URL + "/", Token: "secret", Timeout: time.Second, RetryMax: 2})

	pub, err := signer.PublicKey(t.Context(), "alice", "swap", keys.SchemeSecp256k1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x01}, pub)

	_, err = signer.Sign(t.Context(), "alice", "swap", keys.SchemeSecp256k1, []byte("digest"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quorum lost")
	assert.Equal(t, int32(1), signCalls.Load())
}
