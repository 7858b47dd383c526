// Package portfolios implements portfolio CRUD and the read-time valuation
// assembly. Every operation is scoped to the calling owner; a portfolio
// owned by someone else is indistinguishable from a missing one.
package portfolios

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcosta/btcfolio-backend/internal/domain"
	"github.com/mcosta/btcfolio-backend/internal/usecase/valuation"
)

// SpotPriceSource yields the current market price used for valuation
// display. It is never used to price transactions.
type SpotPriceSource interface {
	CurrentPrice(ctx context.Context) (decimal.Decimal, error)
}

// Service handles portfolio operations.
type Service struct {
	PortfolioRepo   domain.PortfolioRepository
	TransactionRepo domain.TransactionRepository
	Spot            SpotPriceSource
}

// NewService creates a new portfolio service.
func NewService(
	portfolioRepo domain.PortfolioRepository,
	transactionRepo domain.TransactionRepository,
	spot SpotPriceSource,
) *Service {
	return &Service{
		PortfolioRepo:   portfolioRepo,
		TransactionRepo: transactionRepo,
		Spot:            spot,
	}
}

// CreateInput carries the owner-supplied portfolio fields.
type CreateInput struct {
	Name    string
	GoalUSD decimal.Decimal
}

// Create stores a new portfolio for the owner. A duplicate name for the
// same owner surfaces as ErrConflict from the repository; the same name
// under a different owner is fine.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Portfolio, error) {
	portfolio := &domain.Portfolio{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    input.Name,
		GoalUSD: input.GoalUSD,
	}
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	if err := s.PortfolioRepo.Create(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// Get retrieves one owned portfolio.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Portfolio, error) {
	return s.PortfolioRepo.GetByID(ctx, ownerID, id)
}

// List retrieves all portfolios of the owner.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Portfolio, error) {
	return s.PortfolioRepo.ListByOwner(ctx, ownerID)
}

// Update replaces name and goal of an owned portfolio.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, input CreateInput) (*domain.Portfolio, error) {
	portfolio, err := s.PortfolioRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	portfolio.Name = input.Name
	portfolio.GoalUSD = input.GoalUSD
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	if err := s.PortfolioRepo.Update(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// Delete removes an owned portfolio together with its transactions.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.PortfolioRepo.Delete(ctx, ownerID, id)
}

// Detail is a portfolio with its derived valuation.
type Detail struct {
	Portfolio    *domain.Portfolio `json:"portfolio"`
	Metrics      valuation.Metrics `json:"metrics"`
	GoalProgress decimal.Decimal   `json:"goal_progress"`
}

// GetWithMetrics assembles the portfolio detail view: the aggregated
// transaction totals valued at a fresh spot price, plus the raw
// goal-fulfillment ratio. The spot fetch failing surfaces as
// ErrUnavailable; it is never silently defaulted to zero.
func (s *Service) GetWithMetrics(ctx context.Context, ownerID, id uuid.UUID) (*Detail, error) {
	portfolio, err := s.PortfolioRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	totals, err := s.TransactionRepo.AggregateByPortfolio(ctx, portfolio.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	spotPrice, err := s.Spot.CurrentPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("spot price fetch failed: %v: %w", err, domain.ErrUnavailable)
	}

	metrics := valuation.Valuate(*totals, spotPrice)
	return &Detail{
		Portfolio:    portfolio,
		Metrics:      metrics,
		GoalProgress: valuation.GoalProgress(metrics.CurrentValueUSD, portfolio.GoalUSD),
	}, nil
}
