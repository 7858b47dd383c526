// Package cryptocompare talks to the CryptoCompare REST API: the hourly
// candle feed consumed by the ingestion job and the spot price used for
// valuation display.
package cryptocompare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

const (
	// DefaultBaseURL is the public CryptoCompare min-api endpoint.
	DefaultBaseURL = "https://min-api.cryptocompare.com"

	defaultTimeout = 10 * time.Second
)

// Client is a CryptoCompare API client with a bounded request timeout.
// Timeouts and non-2xx responses surface as domain.ErrUnavailable; they are
// never allowed to propagate as an unhandled fault or default to zero.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a CryptoCompare client. An empty baseURL falls back to
// the public endpoint, a non-positive timeout to the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type histoHourResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []candle `json:"Data"`
	} `json:"Data"`
}

type candle struct {
	Time       int64           `json:"time"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Open       decimal.Decimal `json:"open"`
	Close      decimal.Decimal `json:"close"`
	VolumeFrom decimal.Decimal `json:"volumefrom"`
	VolumeTo   decimal.Decimal `json:"volumeto"`
}

// FetchCandles returns up to limit hourly candles for the symbol pair
// ending at the given timestamp, in ascending time order.
func (c *Client) FetchCandles(ctx context.Context, fromSymbol, toSymbol string, to int64, limit int) ([]*domain.HourlyPricePoint, error) {
	params := url.Values{}
	params.Set("fsym", fromSymbol)
	params.Set("tsym", toSymbol)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("toTs", strconv.FormatInt(to, 10))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var payload histoHourResponse
	if err := c.get(ctx, "/data/v2/histohour", params, &payload); err != nil {
		return nil, err
	}
	if payload.Response == "Error" {
		return nil, fmt.Errorf("candle feed rejected request: %s: %w", payload.Message, domain.ErrUnavailable)
	}

	points := make([]*domain.HourlyPricePoint, 0, len(payload.Data.Data))
	for _, cd := range payload.Data.Data {
		points = append(points, &domain.HourlyPricePoint{
			UnixTimestamp: cd.Time,
			Open:          cd.Open,
			High:          cd.High,
			Low:           cd.Low,
			Close:         cd.Close,
			VolumeFrom:    cd.VolumeFrom,
			VolumeTo:      cd.VolumeTo,
		})
	}
	return points, nil
}

// CurrentPrice returns the live BTC price in USD, quantized to cents.
func (c *Client) CurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("fsym", "BTC")
	params.Set("tsyms", "USD")
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var payload map[string]decimal.Decimal
	if err := c.get(ctx, "/data/price", params, &payload); err != nil {
		return decimal.Zero, err
	}

	price, ok := payload["USD"]
	if !ok {
		return decimal.Zero, fmt.Errorf("spot response missing USD quote: %w", domain.ErrUnavailable)
	}
	return price.Round(2), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, domain.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned status %d: %w", path, resp.StatusCode, domain.ErrUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, domain.ErrUnavailable)
	}
	return nil
}
