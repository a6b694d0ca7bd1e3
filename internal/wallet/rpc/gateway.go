package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/chainswap/internal/metrics"
	"github/chapool/chainswap/internal/util"
	"golang.org/x/time/rate"
)

const (
	jsonRPCVersion      = "2.0"
	maxResponseBytes    = 16 << 20
	defaultFlatRetryMax = 3
)

// Config configures a Gateway for one network
type Config struct {
	Network       string
	URLs          []string
	Timeout       time.Duration
	FlatRetryMax  int           // immediate retries after transient errors
	FlatRetryWait time.Duration // optional fixed pause between flat retries
	HTTPRetryMax  int           // HTTP layer retries, delay doubles per attempt
	HTTPWaitMin   time.Duration
	HTTPWaitMax   time.Duration
	RateLimit     float64 // requests per second, <= 0 disables limiting
	RateBurst     int
	Metrics       *metrics.Service
}

// Gateway performs outbound calls against the RPC endpoints of one network.
// Endpoints are used in order and rotated on transient failures.
type Gateway struct {
	network       string
	urls          []string
	client        *retryablehttp.Client
	limiter       *rate.Limiter
	flatRetryMax  int
	flatRetryWait time.Duration
	metrics       *metrics.Service
	logger        zerolog.Logger

	nextID  atomic.Uint64
	mu      sync.RWMutex
	current int
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *responseError  `json:"error"`
}

type responseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func NewGateway(cfg Config) (*Gateway, error) {
	if len(cfg.URLs) == 0 {
		return nil, errors.Errorf("at least one RPC URL is required for %s", cfg.Network)
	}

	flatRetryMax := cfg.FlatRetryMax
	if flatRetryMax < 0 {
		flatRetryMax = defaultFlatRetryMax
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.HTTPRetryMax
	client.RetryWaitMin = cfg.HTTPWaitMin
	client.RetryWaitMax = cfg.HTTPWaitMax
	client.Backoff = retryablehttp.DefaultBackoff
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	urls := make([]string, 0, len(cfg.URLs))
	for _, u := range cfg.URLs {
		urls = append(urls, strings.TrimRight(u, "/"))
	}

	return &Gateway{
		network:       cfg.Network,
		urls:          urls,
		client:        client,
		limiter:       limiter,
		flatRetryMax:  flatRetryMax,
		flatRetryWait: cfg.FlatRetryWait,
		metrics:       cfg.Metrics,
		logger:        log.With().Str("component", "rpc").Str("network", cfg.Network).Logger(),
	}, nil
}

func (g *Gateway) Network() string {
	return g.network
}

// Call performs a JSON-RPC 2.0 call and decodes the result into out (which may be nil).
func (g *Gateway) Call(ctx context.Context, method string, params any, out any) error {
	if params == nil {
		params = []any{}
	}

	return g.withRetry(ctx, method, func(ctx context.Context, baseURL string) error {
		return g.callOnce(ctx, baseURL, method, params, out)
	})
}

// Post sends a JSON body to path below the endpoint URL (REST style APIs such as Tron's).
func (g *Gateway) Post(ctx context.Context, path string, body any, out any) error {
	return g.withRetry(ctx, path, func(ctx context.Context, baseURL string) error {
		return g.postOnce(ctx, baseURL+path, path, body, out)
	})
}

func (g *Gateway) withRetry(ctx context.Context, method string, fn func(ctx context.Context, baseURL string) error) error {
	start := time.Now()

	var err error
	for attempt := 0; ; attempt++ {
		if err = g.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}

		err = fn(ctx, g.currentURL())
		if err == nil {
			g.metrics.RPCCall(g.network, method, "ok", time.Since(start))
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		kind := KindOf(err)
		if kind != KindTransient {
			g.metrics.RPCCall(g.network, method, kind.String(), time.Since(start))
			return err
		}

		if attempt >= g.flatRetryMax {
			break
		}

		g.logger.Warn().Err(err).Str("method", method).Int("attempt", attempt+1).Msg("Transient RPC error, retrying")
		g.metrics.RPCRetry(g.network, method)
		g.rotate()

		if err := sleep(ctx, g.flatRetryWait); err != nil {
			return err
		}
	}

	g.metrics.RPCCall(g.network, method, KindConsensusUnreachable.String(), time.Since(start))
	util.LogFromContext(ctx).Error().Err(err).Str("network", g.network).Str("method", method).Msg("RPC retries exhausted")

	return &Error{
		Kind:    KindConsensusUnreachable,
		Method:  method,
		Message: err.Error(),
		Err:     ErrConsensusUnreachable,
	}
}

func (g *Gateway) callOnce(ctx context.Context, baseURL string, method string, params any, out any) error {
	req := request{
		JSONRPC: jsonRPCVersion,
		ID:      g.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	raw, status, err := g.send(ctx, baseURL, req)
	if err != nil {
		return &Error{Kind: KindTransient, Method: method, Err: err}
	}

	if err := statusError(method, status, raw); err != nil {
		return err
	}

	var res response
	if err := json.Unmarshal(raw, &res); err != nil {
		if kind := ClassifyRPCError(string(raw)); kind != KindRPC {
			return &Error{Kind: kind, Method: method, Message: truncate(raw)}
		}
		return decodeError(method, err)
	}

	if res.Error != nil {
		return &Error{
			Kind:    ClassifyRPCError(res.Error.Message),
			Method:  method,
			Code:    res.Error.Code,
			Message: res.Error.Message,
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(res.Result, out); err != nil {
		return decodeError(method, err)
	}

	return nil
}

func (g *Gateway) postOnce(ctx context.Context, url string, path string, body any, out any) error {
	raw, status, err := g.send(ctx, url, body)
	if err != nil {
		return &Error{Kind: KindTransient, Method: path, Err: err}
	}

	if err := statusError(path, status, raw); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return decodeError(path, err)
	}

	return nil
}

func (g *Gateway) send(ctx context.Context, url string, body any) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to marshal request")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "request to %s failed", url)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, res.StatusCode, errors.Wrap(err, "failed to read response body")
	}

	return raw, res.StatusCode, nil
}

func statusError(method string, status int, raw []byte) error {
	switch {
	case status >= http.StatusInternalServerError:
		return &Error{Kind: KindTransient, Method: method, Code: status, Message: truncate(raw)}
	case status != http.StatusOK:
		return &Error{Kind: ClassifyRPCError(string(raw)), Method: method, Code: status, Message: truncate(raw)}
	default:
		return nil
	}
}

func (g *Gateway) currentURL() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.urls[g.current]
}

func (g *Gateway) rotate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.current = (g.current + 1) % len(g.urls)
}

// sleep suspends for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(raw []byte) string {
	const limit = 512

	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}

	return s
}
