package priceclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

func TestPriceAt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices/1742742597", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"unix_timestamp": 1742742000,
			"open": 87000, "high": 87100.5, "low": 86900, "close": 87050.25,
			"volumefrom": 120.5, "volumeto": 10490000
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	point, err := client.PriceAt(context.Background(), 1742742597)

	require.NoError(t, err)
	assert.Equal(t, int64(1742742000), point.UnixTimestamp)
	assert.True(t, decimal.RequireFromString("87050.25").Equal(point.Close))
}

func TestPriceAt_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "404 is a series gap", status: http.StatusNotFound, want: domain.ErrPriceNotFound},
		{name: "400 is out of range", status: http.StatusBadRequest, want: domain.ErrOutOfRange},
		{name: "500 is retryable", status: http.StatusInternalServerError, want: domain.ErrUnavailable},
		{name: "503 is retryable", status: http.StatusServiceUnavailable, want: domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second)
			_, err := client.PriceAt(context.Background(), 1742742597)

			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPriceAt_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.PriceAt(context.Background(), 1742742597)

	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestPriceAt_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unix_timestamp": "not-a-number"`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.PriceAt(context.Background(), 1742742597)

	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}
