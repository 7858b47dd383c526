package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=btcfolio sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// uniqueViolation is the postgres error code for a violated unique
// constraint.
const uniqueViolation = "23505"

// mapConflict converts a unique-constraint violation into domain.ErrConflict
// so callers can report it without crashing; other errors pass through.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrConflict)
	}
	return err
}

// MigratePriceSchema creates the price service tables if they do not
// exist. The timestamp CHECK is the first candle hour ever stored
// (timeutil.FirstCandleHourUnix, 2010-07-17T01:00:00Z).
func (db *DB) MigratePriceSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS hourly_bitcoin_prices (
			id BIGSERIAL PRIMARY KEY,
			unix_timestamp BIGINT NOT NULL UNIQUE,
			open NUMERIC(20, 2) NOT NULL,
			high NUMERIC(20, 2) NOT NULL,
			low NUMERIC(20, 2) NOT NULL,
			close NUMERIC(20, 2) NOT NULL,
			volumefrom NUMERIC(20, 8) NOT NULL,
			volumeto NUMERIC(20, 8) NOT NULL,
			CONSTRAINT valid_unix_timestamp CHECK (unix_timestamp >= 1279328400)
		)`,
	}
	return db.execAll(ctx, statements)
}

// MigratePortfolioSchema creates the portfolio service tables if they do
// not exist.
func (db *DB) MigratePortfolioSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS portfolios (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL,
			goal_usd NUMERIC(20, 2) NOT NULL DEFAULT 0,
			CONSTRAINT user_portfolio_name_uc UNIQUE (owner_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolios_owner_id ON portfolios (owner_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			portfolio_id UUID NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
			btc_amount NUMERIC(20, 8) NOT NULL,
			price_at_purchase NUMERIC(20, 2) NOT NULL,
			initial_value_usd NUMERIC(20, 2) NOT NULL,
			timestamp_hour_rounded TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_portfolio_id ON transactions (portfolio_id)`,
	}
	return db.execAll(ctx, statements)
}

func (db *DB) execAll(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration statement: %w", err)
		}
	}
	return nil
}
