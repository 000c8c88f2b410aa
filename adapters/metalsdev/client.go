// Package metalsdev is the metals.dev price feed client.
// It fetches spot prices per kg and maps commodity names to LME symbols.
package metalsdev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tariff-engine/internal/errors"
)

// Client fetches commodity prices from the metals.dev latest-prices API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	symbols    map[string]string
}

// Config configures the client
type Config struct {
	// BaseURL is the API base (default https://api.metals.dev/v1)
	BaseURL string

	// APIKey authenticates feed calls
	APIKey string

	// Timeout bounds a single call
	Timeout time.Duration
}

// DefaultConfig returns production defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.metals.dev/v1",
		Timeout: 10 * time.Second,
	}
}

// New creates a metals.dev client
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.metals.dev/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		symbols: map[string]string{
			"copper":   "lme_copper",
			"aluminum": "lme_aluminum",
		},
	}
}

// latestResponse is the shape of the /latest endpoint payload
type latestResponse struct {
	Status string             `json:"status"`
	Metals map[string]float64 `json:"metals"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FetchPrice implements pricing.Feed. Prices are USD per kilogram.
func (c *Client) FetchPrice(ctx context.Context, commodity string) (decimal.Decimal, error) {
	symbol, ok := c.symbols[strings.ToLower(commodity)]
	if !ok {
		return decimal.Zero, errors.Newf(errors.TypePricing, "no feed symbol for commodity %s", commodity)
	}

	if c.apiKey == "" {
		return decimal.Zero, errors.New(errors.TypeConfig, "price feed API key is not set")
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("currency", "USD")
	query.Set("unit", "kg")

	endpoint := fmt.Sprintf("%s/latest?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.TypeInternal, "build feed request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.TypeNetwork, "price feed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Newf(errors.TypeNetwork, "price feed returned status %d", resp.StatusCode)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, errors.Wrap(errors.TypeNetwork, "decode feed response", err)
	}

	if payload.Status != "success" {
		msg := payload.Status
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return decimal.Zero, errors.Newf(errors.TypeNetwork, "price feed error: %s", msg)
	}

	price, ok := payload.Metals[symbol]
	if !ok {
		return decimal.Zero, errors.Newf(errors.TypePricing, "price for %s (%s) missing from feed response", commodity, symbol)
	}

	return decimal.NewFromFloat(price), nil
}
