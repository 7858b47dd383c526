// Package transactions validates and prices BTC buy transactions. A
// transaction combines a caller-supplied amount and timestamp with the
// historical candle that timestamp resolves to; the stored hour is always
// the resolved candle's hour, never the caller's raw input.
package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcosta/btcfolio-backend/internal/domain"
	"github.com/mcosta/btcfolio-backend/internal/timeutil"
)

// HistoricalPriceSource resolves the hourly candle for a Unix timestamp.
// In production this is the price service, reached over the network; its
// failures must stay distinguishable (not found, out of range, unavailable)
// so callers know whether a retry can help.
type HistoricalPriceSource interface {
	PriceAt(ctx context.Context, unixTimestamp int64) (*domain.HourlyPricePoint, error)
}

// Service handles transaction operations scoped by portfolio ownership.
type Service struct {
	PortfolioRepo   domain.PortfolioRepository
	TransactionRepo domain.TransactionRepository
	Prices          HistoricalPriceSource

	now func() time.Time
}

// NewService creates a new transaction service. A nil clock falls back to
// time.Now.
func NewService(
	portfolioRepo domain.PortfolioRepository,
	transactionRepo domain.TransactionRepository,
	prices HistoricalPriceSource,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		PortfolioRepo:   portfolioRepo,
		TransactionRepo: transactionRepo,
		Prices:          prices,
		now:             now,
	}
}

// CreateInput carries the caller-supplied transaction fields. BTCAmount is
// kept as a string until validated so no binary floating point ever touches
// the value.
type CreateInput struct {
	PortfolioID uuid.UUID
	BTCAmount   string
	Timestamp   time.Time
}

// UpdateInput replaces all priced fields of an existing transaction. A
// non-nil NewPortfolioID moves the transaction; the target portfolio's
// ownership is re-validated.
type UpdateInput struct {
	PortfolioID    uuid.UUID
	TransactionID  uuid.UUID
	BTCAmount      string
	Timestamp      time.Time
	NewPortfolioID *uuid.UUID
}

// validateTimestamp rejects instants before the first stored candle or
// inside the window whose candle may still change.
func (s *Service) validateTimestamp(ts time.Time) error {
	if !ts.After(timeutil.FirstHistoricalInstant) {
		return fmt.Errorf("timestamp must be after %s: %w", timeutil.FirstHistoricalInstant, domain.ErrInvalidInput)
	}
	lastValid := timeutil.LastValidTimestamp(s.now())
	if ts.After(lastValid) {
		return fmt.Errorf("timestamp must not be after %s: %w", lastValid, domain.ErrInvalidInput)
	}
	return nil
}

// price validates the raw inputs and resolves them against the historical
// price source, returning the priced fields shared by create and update.
func (s *Service) price(ctx context.Context, amountInput string, ts time.Time) (*domain.Transaction, error) {
	amount, err := domain.ParseBTCAmount(amountInput)
	if err != nil {
		return nil, err
	}
	if err := s.validateTimestamp(ts); err != nil {
		return nil, err
	}

	point, err := s.Prices.PriceAt(ctx, ts.Unix())
	if err != nil {
		return nil, err
	}

	return &domain.Transaction{
		BTCAmount:            amount,
		PriceAtPurchase:      point.Close,
		InitialValueUSD:      amount.Mul(point.Close).Round(2),
		TimestampHourRounded: time.Unix(point.UnixTimestamp, 0).UTC(),
	}, nil
}

// Create validates, prices and stores a new transaction in an owned
// portfolio.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Transaction, error) {
	if _, err := s.PortfolioRepo.GetByID(ctx, ownerID, input.PortfolioID); err != nil {
		return nil, err
	}

	tx, err := s.price(ctx, input.BTCAmount, input.Timestamp)
	if err != nil {
		return nil, err
	}
	tx.ID = uuid.New()
	tx.PortfolioID = input.PortfolioID

	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Get retrieves one transaction of an owned portfolio.
func (s *Service) Get(ctx context.Context, ownerID, portfolioID, id uuid.UUID) (*domain.Transaction, error) {
	if _, err := s.PortfolioRepo.GetByID(ctx, ownerID, portfolioID); err != nil {
		return nil, err
	}
	return s.TransactionRepo.GetByID(ctx, portfolioID, id)
}

// List retrieves all transactions of an owned portfolio.
func (s *Service) List(ctx context.Context, ownerID, portfolioID uuid.UUID) ([]*domain.Transaction, error) {
	if _, err := s.PortfolioRepo.GetByID(ctx, ownerID, portfolioID); err != nil {
		return nil, err
	}
	return s.TransactionRepo.ListByPortfolio(ctx, portfolioID)
}

// Update re-runs validation and pricing against the new inputs and replaces
// all persisted fields atomically.
func (s *Service) Update(ctx context.Context, ownerID uuid.UUID, input UpdateInput) (*domain.Transaction, error) {
	if _, err := s.PortfolioRepo.GetByID(ctx, ownerID, input.PortfolioID); err != nil {
		return nil, err
	}

	existing, err := s.TransactionRepo.GetByID(ctx, input.PortfolioID, input.TransactionID)
	if err != nil {
		return nil, err
	}

	targetPortfolioID := input.PortfolioID
	if input.NewPortfolioID != nil && *input.NewPortfolioID != input.PortfolioID {
		// Moving between portfolios: the target must be owned too.
		if _, err := s.PortfolioRepo.GetByID(ctx, ownerID, *input.NewPortfolioID); err != nil {
			return nil, err
		}
		targetPortfolioID = *input.NewPortfolioID
	}

	priced, err := s.price(ctx, input.BTCAmount, input.Timestamp)
	if err != nil {
		return nil, err
	}
	priced.ID = existing.ID
	priced.PortfolioID = targetPortfolioID

	if err := s.TransactionRepo.Update(ctx, priced); err != nil {
		return nil, err
	}
	return priced, nil
}

// Delete removes one transaction from an owned portfolio.
func (s *Service) Delete(ctx context.Context, ownerID, portfolioID, id uuid.UUID) error {
	if _, err := s.PortfolioRepo.GetByID(ctx, ownerID, portfolioID); err != nil {
		return err
	}
	return s.TransactionRepo.Delete(ctx, portfolioID, id)
}
