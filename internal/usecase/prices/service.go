// Package prices resolves "price at time T" queries against the store of
// hourly candles: the requested timestamp is rounded to the nearest hour,
// checked against the materialized historical range, and looked up exactly.
package prices

import (
	"context"
	"fmt"

	"github.com/mcosta/btcfolio-backend/internal/domain"
	"github.com/mcosta/btcfolio-backend/internal/timeutil"
)

// Slack around the stored range: a request may round to up to half an hour
// before the first candle or into the half hour following the last one.
const (
	lowerSlack = 1800
	upperSlack = 1799
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Service answers price queries. It implements the historical price
// contract consumed by the portfolio service.
type Service struct {
	repo domain.PriceRepository
}

// NewService creates a new price query service.
func NewService(repo domain.PriceRepository) *Service {
	return &Service{repo: repo}
}

// validateRange checks that a rounded timestamp falls within the stored
// historical window, with half an hour of slack on each side.
func validateRange(rounded, minTS, maxTS int64) error {
	low := minTS - lowerSlack
	high := maxTS + upperSlack
	if rounded < low || rounded > high {
		return &domain.TimestampOutOfRangeError{Low: low, High: high}
	}
	return nil
}

// PriceAt resolves the candle for an arbitrary Unix timestamp.
//
// The timestamp is rounded to the nearest hour and validated against the
// stored range before the exact lookup. A timestamp inside the range with
// no matching row is a gap in the series and yields ErrPriceNotFound,
// distinct from the out-of-range failure.
func (s *Service) PriceAt(ctx context.Context, unixTimestamp int64) (*domain.HourlyPricePoint, error) {
	rounded := timeutil.RoundToNearestHour(unixTimestamp)

	minTS, maxTS, err := s.repo.TimestampBounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stored price range: %w", err)
	}

	if err := validateRange(rounded, minTS, maxTS); err != nil {
		return nil, err
	}

	point, err := s.repo.GetByTimestamp(ctx, rounded)
	if err != nil {
		return nil, err
	}
	return point, nil
}

// Latest returns the most recent stored candle.
func (s *Service) Latest(ctx context.Context) (*domain.HourlyPricePoint, error) {
	return s.repo.Latest(ctx)
}

// List returns a page of candles sorted by timestamp descending.
// A non-positive limit falls back to the default page size.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.HourlyPricePoint, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
