package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by both services. Handlers and clients match these
// with errors.Is; services wrap them with fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidInput marks a caller error (bad format or bounds). Not
	// retryable as-is.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound covers rows that are absent or owned by someone else.
	// The two cases are reported identically so callers cannot probe for
	// other users' resources.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable marks a downstream feed or network failure. Retryable.
	ErrUnavailable = errors.New("unavailable")

	// ErrOutOfRange marks a timestamp outside the materialized historical
	// coverage. Distinct from ErrNotFound: it tells the caller why no
	// price exists.
	ErrOutOfRange = errors.New("out of range")
)

// ErrNoPriceData is returned when the price store holds no records at all.
var ErrNoPriceData = errors.New("no price data available")

// ErrPriceNotFound is returned when a rounded timestamp passes the range
// check but no candle exists for it (a gap in the series).
var ErrPriceNotFound = errors.New("price record not found")

// TimestampOutOfRangeError reports a requested timestamp outside the stored
// historical window, carrying the accepted bounds.
type TimestampOutOfRangeError struct {
	Low  int64
	High int64
}

func (e *TimestampOutOfRangeError) Error() string {
	return fmt.Sprintf("timestamp out of valid range [%d, %d]", e.Low, e.High)
}

func (e *TimestampOutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
