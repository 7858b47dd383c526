package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValuate(t *testing.T) {
	totals := domain.PortfolioTotals{
		TotalBTC:        dec("0.02"),
		TotalInitialUSD: dec("2000.00"),
		AveragePriceUSD: dec("100000.00"),
	}

	metrics := Valuate(totals, dec("150000"))

	assert.True(t, dec("3000.00").Equal(metrics.CurrentValueUSD), "current value: %s", metrics.CurrentValueUSD)
	assert.True(t, dec("1000.00").Equal(metrics.NetResultUSD), "net result: %s", metrics.NetResultUSD)
	assert.True(t, dec("0.5").Equal(metrics.ROI), "roi: %s", metrics.ROI)
	assert.True(t, dec("100000.00").Equal(metrics.AveragePriceUSD))
}

func TestValuate_Loss(t *testing.T) {
	totals := domain.PortfolioTotals{
		TotalBTC:        dec("0.02"),
		TotalInitialUSD: dec("2000.00"),
	}

	metrics := Valuate(totals, dec("50000"))

	assert.True(t, dec("1000.00").Equal(metrics.CurrentValueUSD))
	assert.True(t, dec("-1000.00").Equal(metrics.NetResultUSD))
	assert.True(t, dec("-0.5").Equal(metrics.ROI))
}

func TestValuate_EmptyPortfolio(t *testing.T) {
	// No capital invested must never trip a division by zero: all derived
	// metrics are zero, for any positive spot price.
	totals := domain.PortfolioTotals{
		TotalBTC:        decimal.Zero,
		TotalInitialUSD: decimal.Zero,
		AveragePriceUSD: decimal.Zero,
	}

	metrics := Valuate(totals, dec("112293.52"))

	assert.True(t, metrics.CurrentValueUSD.IsZero())
	assert.True(t, metrics.NetResultUSD.IsZero())
	assert.True(t, metrics.ROI.IsZero())
}

func TestValuate_ExactCents(t *testing.T) {
	// 0.0003 * 112293.52 = 33.688056 -> 33.69 rounded half-up to cents.
	totals := domain.PortfolioTotals{
		TotalBTC:        dec("0.0003"),
		TotalInitialUSD: dec("30.00"),
	}

	metrics := Valuate(totals, dec("112293.52"))

	assert.True(t, dec("33.69").Equal(metrics.CurrentValueUSD), "current value: %s", metrics.CurrentValueUSD)
	assert.True(t, dec("3.69").Equal(metrics.NetResultUSD))
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name    string
		current string
		goal    string
		want    string
	}{
		{name: "halfway", current: "5000", goal: "10000", want: "0.5"},
		{name: "goal exceeded keeps raw ratio", current: "15000", goal: "10000", want: "1.5"},
		{name: "zero goal yields zero", current: "5000", goal: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GoalProgress(dec(tt.current), dec(tt.goal))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.True(t, dec("0.5").Equal(Clamp01(dec("0.5"))))
	assert.True(t, dec("1").Equal(Clamp01(dec("1.5"))), "ratios above 1 clamp to 1")
	assert.True(t, decimal.Zero.Equal(Clamp01(dec("-0.2"))), "negative ratios clamp to 0")
}
