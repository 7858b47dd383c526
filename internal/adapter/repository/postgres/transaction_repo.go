package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = "id, portfolio_id, btc_amount, price_at_purchase, initial_value_usd, timestamp_hour_rounded"

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.PortfolioID,
		tx.BTCAmount.String(),
		tx.PriceAtPurchase.String(),
		tx.InitialValueUSD.String(),
		tx.TimestampHourRounded,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction scoped by portfolio
func (r *transactionRepository) GetByID(ctx context.Context, portfolioID, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND portfolio_id = $2
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, portfolioID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return tx, nil
}

// ListByPortfolio retrieves all transactions of one portfolio
func (r *transactionRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY timestamp_hour_rounded DESC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return transactions, nil
}

// Update replaces all persisted fields of a transaction atomically. The
// portfolio reference may change; ownership of the target portfolio is the
// service's responsibility.
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET portfolio_id = $2,
			btc_amount = $3,
			price_at_purchase = $4,
			initial_value_usd = $5,
			timestamp_hour_rounded = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.PortfolioID,
		tx.BTCAmount.String(),
		tx.PriceAtPurchase.String(),
		tx.InitialValueUSD.String(),
		tx.TimestampHourRounded,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a transaction from the given portfolio
func (r *transactionRepository) Delete(ctx context.Context, portfolioID, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1 AND portfolio_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AggregateByPortfolio computes the scalar totals in one database-side
// aggregation, never materializing the transaction list. An empty portfolio
// aggregates to all zeros.
func (r *transactionRepository) AggregateByPortfolio(ctx context.Context, portfolioID uuid.UUID) (*domain.PortfolioTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(btc_amount), 0),
			COALESCE(SUM(initial_value_usd), 0),
			CASE WHEN COALESCE(SUM(btc_amount), 0) > 0
				THEN ROUND(SUM(btc_amount * price_at_purchase) / SUM(btc_amount), 2)
				ELSE 0
			END
		FROM transactions
		WHERE portfolio_id = $1
	`

	var totalBTCStr, totalInitialStr, averagePriceStr string
	err := r.db.QueryRowContext(ctx, query, portfolioID).Scan(&totalBTCStr, &totalInitialStr, &averagePriceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate portfolio transactions: %w", err)
	}

	var totals domain.PortfolioTotals
	for _, field := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{totalBTCStr, &totals.TotalBTC},
		{totalInitialStr, &totals.TotalInitialUSD},
		{averagePriceStr, &totals.AveragePriceUSD},
	} {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse aggregate column: %w", err)
		}
		*field.dst = value
	}
	return &totals, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountStr, priceStr, initialStr string

	if err := row.Scan(&tx.ID, &tx.PortfolioID, &amountStr, &priceStr, &initialStr, &tx.TimestampHourRounded); err != nil {
		return nil, err
	}

	for _, field := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{amountStr, &tx.BTCAmount},
		{priceStr, &tx.PriceAtPurchase},
		{initialStr, &tx.InitialValueUSD},
	} {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction column: %w", err)
		}
		*field.dst = value
	}
	tx.TimestampHourRounded = tx.TimestampHourRounded.UTC()
	return &tx, nil
}
