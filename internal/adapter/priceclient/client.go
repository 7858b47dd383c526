// Package priceclient is the portfolio service's HTTP client for the price
// service. It implements the historical price contract and keeps the price
// service's failure kinds distinguishable for the transaction factory.
package priceclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

const defaultTimeout = 5 * time.Second

// Client resolves historical prices over the network.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a price service client. A non-positive timeout falls
// back to the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PriceAt fetches the candle the price service resolves for a timestamp.
//
// Status mapping mirrors the price service's error taxonomy: 404 is a gap
// (ErrPriceNotFound), 400 is outside the materialized range (ErrOutOfRange),
// anything else, including transport failures, is retryable
// (ErrUnavailable).
func (c *Client) PriceAt(ctx context.Context, unixTimestamp int64) (*domain.HourlyPricePoint, error) {
	url := c.baseURL + "/prices/" + strconv.FormatInt(unixTimestamp, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price service request failed: %w", domain.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("no candle for timestamp %d: %w", unixTimestamp, domain.ErrPriceNotFound)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("timestamp %d: %w", unixTimestamp, domain.ErrOutOfRange)
	default:
		return nil, fmt.Errorf("price service returned status %d: %w", resp.StatusCode, domain.ErrUnavailable)
	}

	var point domain.HourlyPricePoint
	if err := json.NewDecoder(resp.Body).Decode(&point); err != nil {
		return nil, fmt.Errorf("malformed price service response: %w", domain.ErrUnavailable)
	}
	return &point, nil
}
