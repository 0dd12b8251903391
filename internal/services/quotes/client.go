// Package quotes implements a QuoteFetcher against a REST quote provider,
// used to backfill daily-bar history before the live stream takes over.
package quotes

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
)

// Client fetches daily bars over HTTP.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

// New builds an HTTP quote client with timeout and base URL from config.
func New(cfg *config.Config) *Client {
	timeout := cfg.Quotes.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.Quotes.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type wireDaily struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"`
}

type dailyResponse struct {
	Symbol string      `json:"symbol"`
	Market string      `json:"market"`
	Data   []wireDaily `json:"data"`
}

// FetchDailyBars returns up to limit bars in ascending date order.
func (c *Client) FetchDailyBars(ctx context.Context, symbol, market string, limit int) ([]models.Bar, error) {
	if c.client == nil || c.baseURL == "" {
		return nil, fmt.Errorf("quote client not initialized")
	}
	var resp dailyResponse
	err := c.getJSONWithRetry(ctx, "/api/v1/daily", map[string][]string{
		"symbol": {symbol},
		"market": {market},
		"limit":  {strconv.Itoa(limit)},
	}, &resp, 3)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	bars := make([]models.Bar, 0, len(resp.Data))
	for _, d := range resp.Data {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		bars = append(bars, models.Bar{
			Symbol: symbol,
			Market: market,
			Date:   date,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
			Amount: d.Amount,
		})
	}
	return bars, nil
}

// getJSONWithRetry issues a GET with up to attempts retries for transient errors.
func (c *Client) getJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}, attempts int) error {
	var err error
	for i := 1; i <= attempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + path,
			QueryParams: query,
		}, dest)
		if err == nil {
			return nil
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

var _ domsvc.QuoteFetcher = (*Client)(nil)
