package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/finsight/ledger-engine/internal/domain"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) RecordLend(ctx context.Context, user domain.UserID, newBorrowerName string, debt *domain.Debt) (int64, error) {
	args := m.Called(ctx, user, newBorrowerName, debt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) RecordRepayment(ctx context.Context, debt *domain.Debt, repayment *domain.Repayment, newRepaid decimal.Decimal, newStatus string) error {
	args := m.Called(ctx, debt, repayment, newRepaid, newStatus)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeleteDebt(ctx context.Context, debt *domain.Debt) error {
	args := m.Called(ctx, debt)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeleteBorrower(ctx context.Context, borrowerID int64) error {
	args := m.Called(ctx, borrowerID)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetBorrower(ctx context.Context, borrowerID int64) (*domain.Borrower, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockLedgerRepository) ListBorrowers(ctx context.Context, user domain.UserID) ([]*domain.Borrower, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrower), args.Error(1)
}

func (m *MockLedgerRepository) GetDebt(ctx context.Context, debtID int64) (*domain.Debt, error) {
	args := m.Called(ctx, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockLedgerRepository) ListDebtsByBorrower(ctx context.Context, borrowerID int64) ([]*domain.Debt, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

func (m *MockLedgerRepository) ListRepaymentsByBorrower(ctx context.Context, borrowerID int64) ([]*domain.RepaymentEntry, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepaymentEntry), args.Error(1)
}

func (m *MockLedgerRepository) DashboardStats(ctx context.Context, user domain.UserID) (*domain.LedgerStats, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerStats), args.Error(1)
}

func (m *MockLedgerRepository) TopBorrowers(ctx context.Context, user domain.UserID, limit int) ([]*domain.Borrower, error) {
	args := m.Called(ctx, user, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrower), args.Error(1)
}

func (m *MockLedgerRepository) CountOverdueDebts(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) ListUsers(ctx context.Context) ([]domain.UserID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserID), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) MonthlyExpenseTotals(ctx context.Context, user domain.UserID, since time.Time) ([]*domain.MonthlyTotal, error) {
	args := m.Called(ctx, user, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MonthlyTotal), args.Error(1)
}

func (m *MockTransactionRepository) TopExpenseCategory(ctx context.Context, user domain.UserID, from, to time.Time) (*domain.CategoryTotal, error) {
	args := m.Called(ctx, user, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryTotal), args.Error(1)
}

func (m *MockTransactionRepository) CategorySpendWithBudgets(ctx context.Context, user domain.UserID, from, to time.Time) ([]*domain.BudgetStatus, error) {
	args := m.Called(ctx, user, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BudgetStatus), args.Error(1)
}

func (m *MockTransactionRepository) ExpensesSince(ctx context.Context, user domain.UserID, since time.Time) ([]*domain.ExpenseRecord, error) {
	args := m.Called(ctx, user, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ExpenseRecord), args.Error(1)
}

func (m *MockTransactionRepository) TotalBudgetLimit(ctx context.Context, user domain.UserID) (decimal.Decimal, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
