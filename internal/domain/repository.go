package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRepository defines the interface for hourly price persistence.
type PriceRepository interface {
	// GetByTimestamp retrieves the candle stored for an exact (already
	// rounded) Unix timestamp. Returns ErrPriceNotFound if no row exists.
	GetByTimestamp(ctx context.Context, unixTimestamp int64) (*HourlyPricePoint, error)

	// Latest retrieves the candle with the highest timestamp.
	// Returns ErrNoPriceData if the store is empty.
	Latest(ctx context.Context) (*HourlyPricePoint, error)

	// TimestampBounds returns the smallest and largest stored timestamps.
	// Returns ErrNoPriceData if the store is empty.
	TimestampBounds(ctx context.Context) (min, max int64, err error)

	// Insert stores a candle. Inserting a timestamp that already exists is
	// a no-op; the bool reports whether a row was actually written.
	Insert(ctx context.Context, point *HourlyPricePoint) (bool, error)

	// List retrieves a page of candles sorted by timestamp descending.
	List(ctx context.Context, limit, offset int) ([]*HourlyPricePoint, error)
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrConflict if the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// PortfolioRepository defines the interface for portfolio persistence.
// Every read and write is scoped by owner: a portfolio that exists but
// belongs to another user behaves exactly like one that does not exist.
type PortfolioRepository interface {
	// Create stores a new portfolio. Returns ErrConflict if the owner
	// already has a portfolio with the same name.
	Create(ctx context.Context, portfolio *Portfolio) error

	// GetByID retrieves an owned portfolio. Returns ErrNotFound if absent
	// or owned by someone else.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Portfolio, error)

	// ListByOwner retrieves all portfolios of one owner.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Portfolio, error)

	// Update replaces name and goal of an owned portfolio.
	Update(ctx context.Context, portfolio *Portfolio) error

	// Delete removes an owned portfolio and, by cascade, its transactions.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// PortfolioTotals is the aggregation a valuation needs: scalar sums over a
// portfolio's transactions. An empty portfolio yields all zeros.
type PortfolioTotals struct {
	TotalBTC        decimal.Decimal `json:"total_btc_amount"`
	TotalInitialUSD decimal.Decimal `json:"initial_value_usd"`
	AveragePriceUSD decimal.Decimal `json:"average_price_usd"`
}

// TransactionRepository defines the interface for transaction persistence.
type TransactionRepository interface {
	// Create stores a new transaction.
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction belonging to the given portfolio.
	// Returns ErrNotFound if absent or attached to another portfolio.
	GetByID(ctx context.Context, portfolioID, id uuid.UUID) (*Transaction, error)

	// ListByPortfolio retrieves all transactions of one portfolio.
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*Transaction, error)

	// Update replaces all mutable fields of a transaction atomically.
	Update(ctx context.Context, tx *Transaction) error

	// Delete removes a transaction from the given portfolio.
	Delete(ctx context.Context, portfolioID, id uuid.UUID) error

	// AggregateByPortfolio computes the portfolio's scalar totals without
	// materializing the transaction list. An empty portfolio is not an
	// error: all totals are zero.
	AggregateByPortfolio(ctx context.Context, portfolioID uuid.UUID) (*PortfolioTotals, error)
}
