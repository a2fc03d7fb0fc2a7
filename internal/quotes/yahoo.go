// Package quotes provides a client for the Yahoo Finance chart API, the
// live price source for valuations.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/declanharris/portfolio-tracker/internal/models"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5 // requests per second
)

// Client fetches quotes and price history. Unknown or delisted symbols are
// reported as unavailable quotes, not errors; only transport and decoding
// failures surface as errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// Option configures the client
type Option func(*Client)

// WithBaseURL sets the base URL (tests point this at a local server)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the request rate limit
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) getChart(ctx context.Context, symbol, rng, interval string) (*chartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "portfolio-tracker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	// Yahoo answers unknown symbols with a 404 carrying a chart error body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("chart request for %s returned status %d", symbol, resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", symbol, err)
	}
	return &chart, nil
}

// GetLatestPrice returns the most recent closing price for symbol. A symbol
// the provider does not know yields a quote with a nil price and no error.
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (models.Quote, error) {
	unavailable := models.Quote{Symbol: symbol, AsOf: time.Now()}

	chart, err := c.getChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return unavailable, err
	}
	if chart.Chart.Error != nil || len(chart.Chart.Result) == 0 {
		return unavailable, nil
	}

	result := chart.Chart.Result[0]
	price := result.Meta.RegularMarketPrice
	if price == 0 {
		// Fall back to the last non-nil close in the series.
		for _, q := range result.Indicators.Quote {
			for i := len(q.Close) - 1; i >= 0; i-- {
				if q.Close[i] != nil {
					price = *q.Close[i]
					break
				}
			}
		}
	}
	if price == 0 {
		return unavailable, nil
	}

	asOf := time.Now()
	if result.Meta.RegularMarketTime > 0 {
		asOf = time.Unix(result.Meta.RegularMarketTime, 0)
	}

	p := decimal.NewFromFloat(price)
	return models.Quote{Symbol: symbol, Price: &p, AsOf: asOf}, nil
}

// GetHistory returns the daily close series for symbol over rng
// (e.g. "1mo", "6mo", "1y"). Days without a close are omitted.
func (c *Client) GetHistory(ctx context.Context, symbol, rng string) ([]models.PricePoint, error) {
	chart, err := c.getChart(ctx, symbol, rng, "1d")
	if err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("no history for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no history for %s", symbol)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: decimal.NewFromFloat(*closes[i]).Round(2),
		})
	}
	return points, nil
}
