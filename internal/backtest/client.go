// Package backtest is the HTTP client for the external backtesting service.
//
// The service computes everything; this package only fetches, decodes, and
// normalizes its payloads so the rest of the system sees exactly one date
// representation.
package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chartsync/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError is a non-2xx response from the backtesting service. The service
// reports failures as {"error": "..."} bodies.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backtest service error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the backtesting service.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	hc := resty.New()
	hc.SetBaseURL(baseURL)
	hc.SetTimeout(timeout)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: hc, logger: logger}
}

func (c *Client) apiError(resp *resty.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return &APIError{StatusCode: resp.StatusCode(), Message: body.Error}
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
}

// PriceData fetches the daily OHLC series for a ticker and date range.
func (c *Client) PriceData(ctx context.Context, ticker, start, end string) ([]model.PriceBar, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ticker":     ticker,
			"start_date": start,
			"end_date":   end,
		}).
		Get("/api/get-price-data")
	if err != nil {
		return nil, fmt.Errorf("fetching price data for %s: %w", ticker, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var raw []rawBar
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decoding price data: %w", err)
	}
	bars, dropped := normalizeBars(raw)
	if dropped > 0 {
		c.logger.Warn("price_bars_dropped",
			zap.String("ticker", ticker),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(bars)),
		)
	}
	return bars, nil
}

// IndicatorData fetches one indicator series for a ticker and date range.
// Samples whose date fails to parse, or whose value is absent (indicator
// warm-up), are dropped with a logged anomaly count.
func (c *Client) IndicatorData(ctx context.Context, ticker string, ind model.Indicator, period int, start, end string) ([]model.IndicatorSample, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ticker":     ticker,
			"indicator":  string(ind),
			"period":     strconv.Itoa(period),
			"start_date": start,
			"end_date":   end,
		}).
		Get("/api/get-indicator-data")
	if err != nil {
		return nil, fmt.Errorf("fetching %s_%d for %s: %w", ind, period, ticker, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var raw []rawSample
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decoding %s_%d series: %w", ind, period, err)
	}
	samples, dropped := normalizeSamples(raw)
	if dropped > 0 {
		c.logger.Warn("indicator_samples_dropped",
			zap.String("ticker", ticker),
			zap.String("series", fmt.Sprintf("%s_%d", ind, period)),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(samples)),
		)
	}
	return samples, nil
}

// RunBacktest submits the strategy to the service and returns its result.
// Conditions are canonicalized first so transient edit state never reaches
// the wire.
func (c *Client) RunBacktest(ctx context.Context, params model.StrategyParameters) (*model.BacktestResult, error) {
	var result model.BacktestResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(params.ForService()).
		Post("/api/run-backtest")
	if err != nil {
		return nil, fmt.Errorf("running backtest for %s: %w", params.Ticker, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, c.apiError(resp)
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decoding backtest result: %w", err)
	}
	return &result, nil
}
