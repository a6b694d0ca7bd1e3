package keys

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	remotePublicKeyPath = "/v1/keys/public"
	remoteSignPath      = "/v1/sign"
	maxRemoteBodyBytes  = 1 << 20
)

type remoteKeyRequest struct {
	Owner   string `json:"owner"`
	Purpose string `json:"purpose"`
	Scheme  Scheme `json:"scheme"`
	Payload string `json:"payload,omitempty"`
}

type remotePublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type remoteSignResponse struct {
	Signature string `json:"signature"`
}

type remoteErrorResponse struct {
	Error string `json:"error"`
}

// RemoteSigner talks to an HTTP signing service. Public key lookups are retried
// with exponential backoff, signing requests are sent exactly once.
type RemoteSigner struct {
	baseURL string
	token   string
	client  *retryablehttp.Client
	once    *retryablehttp.Client
}

type RemoteSignerConfig struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryMax int
}

func NewRemoteSigner(cfg RemoteSignerConfig) *RemoteSigner {
	return &RemoteSigner{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  newSignerClient(cfg.RetryMax, cfg.Timeout),
		once:    newSignerClient(0, cfg.Timeout),
	}
}

func newSignerClient(retryMax int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	client.HTTPClient.Timeout = timeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return client
}

func (r *RemoteSigner) PublicKey(ctx context.Context, owner string, purpose string, scheme Scheme) ([]byte, error) {
	var out remotePublicKeyResponse
	if err := r.post(ctx, remotePublicKeyPath, remoteKeyRequest{Owner: owner, Purpose: purpose, Scheme: scheme}, &out, true); err != nil {
		return nil, err
	}

	pub, err := hexutil.Decode(out.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode public key")
	}

	return pub, nil
}

func (r *RemoteSigner) Sign(ctx context.Context, owner string, purpose string, scheme Scheme, payload []byte) ([]byte, error) {
	req := remoteKeyRequest{Owner: owner, Purpose: purpose, Scheme: scheme, Payload: hexutil.Encode(payload)}

	var out remoteSignResponse
	if err := r.post(ctx, remoteSignPath, req, &out, false); err != nil {
		return nil, err
	}

	sig, err := hexutil.Decode(out.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode signature")
	}

	return sig, nil
}

func (r *RemoteSigner) post(ctx context.Context, path string, in any, out any, retry bool) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to marshal signer request")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create signer request")
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	client := r.once
	if retry {
		client = r.client
	}

	res, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "signer request %s failed", path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxRemoteBodyBytes))
	if err != nil {
		return errors.Wrap(err, "failed to read signer response")
	}

	if res.StatusCode != http.StatusOK {
		var e remoteErrorResponse
		_ = json.Unmarshal(raw, &e)
		if e.Error == "" {
			e.Error = string(bytes.TrimSpace(raw))
		}
		return errors.Errorf("signer %s returned %d: %s", path, res.StatusCode, e.Error)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "failed to decode signer response")
	}

	return nil
}
