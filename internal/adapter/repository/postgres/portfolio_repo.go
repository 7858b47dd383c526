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

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioRepository {
	return &portfolioRepository{db: db}
}

// Create creates a new portfolio
func (r *portfolioRepository) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	query := `
		INSERT INTO portfolios (id, owner_id, name, goal_usd)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		portfolio.ID,
		portfolio.OwnerID,
		portfolio.Name,
		portfolio.GoalUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", mapConflict(err))
	}
	return nil
}

// GetByID retrieves a portfolio scoped by owner. A portfolio owned by
// another user scans as no rows and reports ErrNotFound.
func (r *portfolioRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Portfolio, error) {
	query := `
		SELECT id, owner_id, name, goal_usd
		FROM portfolios
		WHERE id = $1 AND owner_id = $2
	`

	portfolio, err := scanPortfolio(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio by ID: %w", err)
	}
	return portfolio, nil
}

// ListByOwner retrieves all portfolios of one owner
func (r *portfolioRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Portfolio, error) {
	query := `
		SELECT id, owner_id, name, goal_usd
		FROM portfolios
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*domain.Portfolio
	for rows.Next() {
		portfolio, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
		}
		portfolios = append(portfolios, portfolio)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolio rows: %w", err)
	}
	return portfolios, nil
}

// Update replaces name and goal of an owned portfolio
func (r *portfolioRepository) Update(ctx context.Context, portfolio *domain.Portfolio) error {
	query := `
		UPDATE portfolios
		SET name = $3, goal_usd = $4
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		portfolio.ID,
		portfolio.OwnerID,
		portfolio.Name,
		portfolio.GoalUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", mapConflict(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("portfolio %s: %w", portfolio.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an owned portfolio; its transactions go with it (cascade)
func (r *portfolioRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM portfolios WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanPortfolio(row interface{ Scan(...any) error }) (*domain.Portfolio, error) {
	var portfolio domain.Portfolio
	var goalStr string

	if err := row.Scan(&portfolio.ID, &portfolio.OwnerID, &portfolio.Name, &goalStr); err != nil {
		return nil, err
	}

	goal, err := decimal.NewFromString(goalStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse goal_usd: %w", err)
	}
	portfolio.GoalUSD = goal
	return &portfolio, nil
}
