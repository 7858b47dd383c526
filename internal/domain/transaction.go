package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BTCAmountDecimalPlaces is the maximum fractional precision of a BTC
// amount (one satoshi).
const BTCAmountDecimalPlaces = 8

// MaxBTCAmount is the total BTC supply cap; no single purchase can exceed it.
var MaxBTCAmount = decimal.NewFromInt(21_000_000)

// Transaction represents a single BTC buy recorded against a portfolio.
// PriceAtPurchase is the close of the hourly candle the requested timestamp
// resolved to, and TimestampHourRounded is that candle's hour (UTC, an exact
// multiple of 3600 seconds).
type Transaction struct {
	ID                   uuid.UUID       `json:"id"`
	PortfolioID          uuid.UUID       `json:"portfolio_id"`
	BTCAmount            decimal.Decimal `json:"btc_amount"`
	PriceAtPurchase      decimal.Decimal `json:"price_at_purchase"`
	InitialValueUSD      decimal.Decimal `json:"initial_value_usd"`
	TimestampHourRounded time.Time       `json:"timestamp_hour_rounded"`
}

// ParseBTCAmount parses and validates a BTC amount from its string form.
// The amount must be a valid decimal, strictly positive, at most the total
// BTC supply, and carry no more than 8 fractional digits.
func ParseBTCAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, fmt.Errorf("btc amount %q is not a valid decimal: %w", input, ErrInvalidInput)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("btc amount must be positive: %w", ErrInvalidInput)
	}
	if amount.GreaterThan(MaxBTCAmount) {
		return decimal.Zero, fmt.Errorf("btc amount cannot exceed %s: %w", MaxBTCAmount, ErrInvalidInput)
	}
	if amount.Exponent() < -BTCAmountDecimalPlaces {
		return decimal.Zero, fmt.Errorf("btc amount cannot have more than %d decimal places: %w", BTCAmountDecimalPlaces, ErrInvalidInput)
	}
	return amount, nil
}
