package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/finsight/ledger-engine/internal/domain"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Lend(ctx context.Context, user domain.UserID, request *domain.LendRequest) (*domain.Debt, error) {
	args := m.Called(ctx, user, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockLedgerService) Repay(ctx context.Context, debtID int64, request *domain.RepayRequest) (*domain.Repayment, error) {
	args := m.Called(ctx, debtID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockLedgerService) MarkFullyPaid(ctx context.Context, debtID int64, request *domain.MarkPaidRequest) (*domain.SettleResult, error) {
	args := m.Called(ctx, debtID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettleResult), args.Error(1)
}

func (m *MockLedgerService) DeleteDebt(ctx context.Context, debtID int64) error {
	args := m.Called(ctx, debtID)
	return args.Error(0)
}

func (m *MockLedgerService) DeleteBorrower(ctx context.Context, borrowerID int64) error {
	args := m.Called(ctx, borrowerID)
	return args.Error(0)
}

func (m *MockLedgerService) ListBorrowers(ctx context.Context, user domain.UserID) ([]*domain.Borrower, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrower), args.Error(1)
}

func (m *MockLedgerService) GetLedger(ctx context.Context, borrowerID int64) (*domain.LedgerResponse, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerResponse), args.Error(1)
}

func (m *MockLedgerService) GetDashboard(ctx context.Context, user domain.UserID) (*domain.DashboardResponse, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardResponse), args.Error(1)
}

func (m *MockLedgerService) DailySweep(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedgerService) LendingSummary(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) PredictNextMonthSpend(ctx context.Context, user domain.UserID) (*domain.PredictionResponse, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PredictionResponse), args.Error(1)
}

func (m *MockAnalyticsService) GenerateInsights(ctx context.Context, user domain.UserID) ([]*domain.Insight, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Insight), args.Error(1)
}

func (m *MockAnalyticsService) BudgetStatus(ctx context.Context, user domain.UserID) ([]*domain.BudgetStatus, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BudgetStatus), args.Error(1)
}

func (m *MockAnalyticsService) BudgetHistory(ctx context.Context, user domain.UserID) ([]*domain.BudgetBucket, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BudgetBucket), args.Error(1)
}
