// Package valuation holds the pure arithmetic that turns a portfolio's
// aggregated transactions plus a fresh spot price into display metrics.
// All math is exact decimal: the outputs are user-facing financial figures
// and must reproduce cent-level results deterministically.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// Metrics is the derived, never persisted valuation of a portfolio.
type Metrics struct {
	TotalBTC        decimal.Decimal `json:"total_btc_amount"`
	TotalInitialUSD decimal.Decimal `json:"initial_value_usd"`
	AveragePriceUSD decimal.Decimal `json:"average_price_usd"`
	CurrentValueUSD decimal.Decimal `json:"current_value_usd"`
	NetResultUSD    decimal.Decimal `json:"net_result"`
	ROI             decimal.Decimal `json:"roi"`
}

// Valuate computes the valuation of a portfolio from its aggregated totals
// and the current spot price.
//
// A portfolio with no capital invested yields zero net result and zero ROI.
// That is deliberate policy, not an error: an empty portfolio is a valid
// state and must never trip a division by zero.
func Valuate(totals domain.PortfolioTotals, spotPrice decimal.Decimal) Metrics {
	currentValue := totals.TotalBTC.Mul(spotPrice).Round(2)

	netResult := decimal.Zero
	roi := decimal.Zero
	if totals.TotalInitialUSD.IsPositive() {
		netResult = currentValue.Sub(totals.TotalInitialUSD)
		roi = netResult.Div(totals.TotalInitialUSD)
	}

	return Metrics{
		TotalBTC:        totals.TotalBTC,
		TotalInitialUSD: totals.TotalInitialUSD,
		AveragePriceUSD: totals.AveragePriceUSD,
		CurrentValueUSD: currentValue,
		NetResultUSD:    netResult,
		ROI:             roi,
	}
}

// GoalProgress returns the raw goal-fulfillment ratio: current value divided
// by the goal, zero when no goal is set. The ratio may exceed 1; clamping is
// a presentation concern (see Clamp01).
func GoalProgress(currentValueUSD, goalUSD decimal.Decimal) decimal.Decimal {
	if goalUSD.IsPositive() {
		return currentValueUSD.Div(goalUSD)
	}
	return decimal.Zero
}

// Clamp01 limits a ratio to [0, 1] for the visual portion of a progress
// indicator. Callers must still report the raw ratio numerically.
func Clamp01(ratio decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if ratio.IsNegative() {
		return decimal.Zero
	}
	if ratio.GreaterThan(one) {
		return one
	}
	return ratio
}
