package price

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const maxPriceResponseBytes = 1 << 16

// HTTPFeed fetches GET <baseURL>/<SYMBOL> and expects {"price":"<decimal>"}
type HTTPFeed struct {
	baseURL string
	client  *retryablehttp.Client
}

type HTTPFeedConfig struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	WaitMin  time.Duration
	WaitMax  time.Duration
}

func NewHTTPFeed(cfg HTTPFeedConfig) (*HTTPFeed, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, errors.Wrap(err, "invalid price feed URL")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.WaitMin
	client.RetryWaitMax = cfg.WaitMax
	client.Logger = nil
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return &HTTPFeed{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}, nil
}

type priceResponse struct {
	Price decimal.Decimal `json:"price"`
}

func (f *HTTPFeed) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := f.baseURL + "/" + url.PathEscape(strings.ToUpper(symbol))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to create price request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "price request for %s failed", symbol)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return decimal.Zero, errors.Wrap(ErrUnknownSymbol, symbol)
	case res.StatusCode != http.StatusOK:
		return decimal.Zero, errors.Errorf("price feed returned status %d for %s", res.StatusCode, symbol)
	}

	var body priceResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxPriceResponseBytes)).Decode(&body); err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to decode price of %s", symbol)
	}

	return checkPrice(symbol, body.Price)
}
