// Package coingecko wraps REST access to the CoinGecko simple price API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paper-core/internal/market"
)

// Client fetches spot prices from CoinGecko's public API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a REST client with the public base URL.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    "https://api.coingecko.com",
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Quotes fetches USD prices and 24h volumes for all ids in a single batched
// request. Ids CoinGecko does not know are absent from the result.
func (c *Client) Quotes(ctx context.Context, ids []string) (map[string]market.Quote, error) {
	if len(ids) == 0 {
		return map[string]market.Quote{}, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_vol", "true")

	u := fmt.Sprintf("%s/api/v3/simple/price?%s", c.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko simple price status %d", res.StatusCode)
	}

	var raw map[string]struct {
		USD       float64 `json:"usd"`
		USDVolume float64 `json:"usd_24h_vol"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}

	quotes := make(map[string]market.Quote, len(raw))
	for id, entry := range raw {
		if entry.USD <= 0 {
			continue
		}
		quotes[id] = market.Quote{Price: entry.USD, Volume: entry.USDVolume}
	}
	return quotes, nil
}
