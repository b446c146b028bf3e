package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultFundingBaseURL = "https://fapi.binance.com"

// FundingClient fetches the current perpetual funding rate from the Binance
// futures premium-index endpoint, caching each symbol's last answer so the
// dispatcher's trade path never hammers the REST API.
type FundingClient struct {
	baseURL string
	ttl     time.Duration
	client  *http.Client

	mu    sync.Mutex
	cache map[string]fundingEntry
}

type fundingEntry struct {
	rate    float64
	fetched time.Time
}

type premiumIndexResponse struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
}

// NewFundingClient builds a client against baseURL (empty for the Binance
// default) with the given cache TTL.
func NewFundingClient(baseURL string, ttl time.Duration) *FundingClient {
	if baseURL == "" {
		baseURL = defaultFundingBaseURL
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FundingClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   make(map[string]fundingEntry),
	}
}

// Current returns the latest funding rate for symbol, from cache when fresh.
func (c *FundingClient) Current(ctx context.Context, symbol string) (float64, error) {
	c.mu.Lock()
	entry, ok := c.cache[symbol]
	c.mu.Unlock()
	if ok && time.Since(entry.fetched) < c.ttl {
		return entry.rate, nil
	}

	rate, err := c.fetch(ctx, symbol)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.cache[symbol] = fundingEntry{rate: rate, fetched: time.Now()}
	c.mu.Unlock()
	return rate, nil
}

func (c *FundingClient) fetch(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/fapi/v1/premiumIndex?symbol=%s", c.baseURL, strings.ToUpper(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload premiumIndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	rate, err := strconv.ParseFloat(payload.LastFundingRate, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid funding rate %q: %w", payload.LastFundingRate, err)
	}
	return rate, nil
}
