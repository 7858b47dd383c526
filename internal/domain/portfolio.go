package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxPortfolioNameLength bounds portfolio names (DB column is VARCHAR(100)).
const MaxPortfolioNameLength = 100

// Portfolio represents a user-owned BTC portfolio with a USD value goal.
// (OwnerID, Name) is unique; deleting a portfolio cascades to its
// transactions.
type Portfolio struct {
	ID      uuid.UUID       `json:"id"`
	OwnerID uuid.UUID       `json:"-"`
	Name    string          `json:"name"`
	GoalUSD decimal.Decimal `json:"goal_usd"`
}

// Validate ensures the portfolio adheres to domain rules.
func (p *Portfolio) Validate() error {
	if len(p.Name) == 0 {
		return fmt.Errorf("portfolio name cannot be empty: %w", ErrInvalidInput)
	}
	if len(p.Name) > MaxPortfolioNameLength {
		return fmt.Errorf("portfolio name cannot exceed %d characters: %w", MaxPortfolioNameLength, ErrInvalidInput)
	}
	if p.GoalUSD.IsNegative() {
		return fmt.Errorf("portfolio goal cannot be negative: %w", ErrInvalidInput)
	}
	return nil
}
