package portfolios

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// MockPortfolioRepository is a mock implementation of PortfolioRepository for testing
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Portfolio, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Portfolio, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) Update(ctx context.Context, portfolio *domain.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, portfolioID, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, portfolioID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Transaction, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, portfolioID, id uuid.UUID) error {
	args := m.Called(ctx, portfolioID, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) AggregateByPortfolio(ctx context.Context, portfolioID uuid.UUID) (*domain.PortfolioTotals, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioTotals), args.Error(1)
}

// stubSpot is a SpotPriceSource returning a fixed price or error.
type stubSpot struct {
	price decimal.Decimal
	err   error
}

func (s *stubSpot) CurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreate_DuplicateNameConflict(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := new(MockPortfolioRepository)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Portfolio")).Return(domain.ErrConflict)

	service := NewService(repo, new(MockTransactionRepository), &stubSpot{})

	_, err := service.Create(ctx, ownerID, CreateInput{Name: "HODL", GoalUSD: dec("100000")})

	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreate_InvalidInputNeverHitsStore(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPortfolioRepository)

	service := NewService(repo, new(MockTransactionRepository), &stubSpot{})

	_, err := service.Create(ctx, uuid.New(), CreateInput{Name: "", GoalUSD: dec("100")})

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetWithMetrics(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	portfolioID := uuid.New()

	portfolioRepo := new(MockPortfolioRepository)
	txRepo := new(MockTransactionRepository)

	portfolio := &domain.Portfolio{
		ID:      portfolioID,
		OwnerID: ownerID,
		Name:    "HODL",
		GoalUSD: dec("6000"),
	}
	totals := &domain.PortfolioTotals{
		TotalBTC:        dec("0.02"),
		TotalInitialUSD: dec("2000.00"),
		AveragePriceUSD: dec("100000.00"),
	}

	portfolioRepo.On("GetByID", ctx, ownerID, portfolioID).Return(portfolio, nil)
	txRepo.On("AggregateByPortfolio", ctx, portfolioID).Return(totals, nil)

	service := NewService(portfolioRepo, txRepo, &stubSpot{price: dec("150000")})

	detail, err := service.GetWithMetrics(ctx, ownerID, portfolioID)

	require.NoError(t, err)
	assert.True(t, dec("3000.00").Equal(detail.Metrics.CurrentValueUSD))
	assert.True(t, dec("1000.00").Equal(detail.Metrics.NetResultUSD))
	assert.True(t, dec("0.5").Equal(detail.Metrics.ROI))
	assert.True(t, dec("0.5").Equal(detail.GoalProgress), "goal progress: %s", detail.GoalProgress)
}

func TestGetWithMetrics_EmptyPortfolio(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	portfolioID := uuid.New()

	portfolioRepo := new(MockPortfolioRepository)
	txRepo := new(MockTransactionRepository)

	portfolioRepo.On("GetByID", ctx, ownerID, portfolioID).
		Return(&domain.Portfolio{ID: portfolioID, OwnerID: ownerID, Name: "Empty", GoalUSD: dec("1000")}, nil)
	txRepo.On("AggregateByPortfolio", ctx, portfolioID).Return(&domain.PortfolioTotals{
		TotalBTC:        decimal.Zero,
		TotalInitialUSD: decimal.Zero,
		AveragePriceUSD: decimal.Zero,
	}, nil)

	service := NewService(portfolioRepo, txRepo, &stubSpot{price: dec("150000")})

	detail, err := service.GetWithMetrics(ctx, ownerID, portfolioID)

	require.NoError(t, err)
	assert.True(t, detail.Metrics.CurrentValueUSD.IsZero())
	assert.True(t, detail.Metrics.ROI.IsZero())
	assert.True(t, detail.GoalProgress.IsZero())
}

func TestGetWithMetrics_SpotFeedDown(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	portfolioID := uuid.New()

	portfolioRepo := new(MockPortfolioRepository)
	txRepo := new(MockTransactionRepository)

	portfolioRepo.On("GetByID", ctx, ownerID, portfolioID).
		Return(&domain.Portfolio{ID: portfolioID, OwnerID: ownerID, Name: "HODL"}, nil)
	txRepo.On("AggregateByPortfolio", ctx, portfolioID).Return(&domain.PortfolioTotals{}, nil)

	service := NewService(portfolioRepo, txRepo, &stubSpot{err: errors.New("timeout")})

	_, err := service.GetWithMetrics(ctx, ownerID, portfolioID)

	// The failure surfaces as retryable, never a silently zero valuation,
	// and the upstream cause stays visible for operators.
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.Contains(t, err.Error(), "timeout")
}

func TestGet_ForeignPortfolioLooksAbsent(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	portfolioID := uuid.New()

	repo := new(MockPortfolioRepository)
	repo.On("GetByID", ctx, ownerID, portfolioID).Return(nil, domain.ErrNotFound)

	service := NewService(repo, new(MockTransactionRepository), &stubSpot{})

	_, err := service.Get(ctx, ownerID, portfolioID)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
