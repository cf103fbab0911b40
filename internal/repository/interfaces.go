package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/ledger-engine/internal/domain"
)

// LedgerRepository defines the interface for borrower/debt/repayment data
// operations. Multi-row mutations run inside a single database transaction so
// the borrower aggregates and their debts can never diverge on a failure.
type LedgerRepository interface {
	// RecordLend inserts the debt and bumps the owning borrower's total_lent
	// and current_balance in one transaction. When debt.BorrowerID is zero a
	// borrower named newBorrowerName is created for user first. Returns the
	// borrower id and fills in debt.ID.
	RecordLend(ctx context.Context, user domain.UserID, newBorrowerName string, debt *domain.Debt) (int64, error)

	// RecordRepayment appends the repayment row, moves the debt to the given
	// repaid total and status, and adjusts the borrower aggregates by the
	// repayment amount, all in one transaction.
	RecordRepayment(ctx context.Context, debt *domain.Debt, repayment *domain.Repayment, newRepaid decimal.Decimal, newStatus string) error

	// DeleteDebt corrects the borrower aggregates using the debt's pre-delete
	// values and removes the debt (repayments cascade), in one transaction.
	DeleteDebt(ctx context.Context, debt *domain.Debt) error

	// DeleteBorrower removes the borrower; debts and repayments cascade.
	DeleteBorrower(ctx context.Context, borrowerID int64) error

	GetBorrower(ctx context.Context, borrowerID int64) (*domain.Borrower, error)
	ListBorrowers(ctx context.Context, user domain.UserID) ([]*domain.Borrower, error)
	GetDebt(ctx context.Context, debtID int64) (*domain.Debt, error)
	ListDebtsByBorrower(ctx context.Context, borrowerID int64) ([]*domain.Debt, error)
	ListRepaymentsByBorrower(ctx context.Context, borrowerID int64) ([]*domain.RepaymentEntry, error)

	// DashboardStats sums total_lent, total_repaid and current_balance across
	// the user's borrowers.
	DashboardStats(ctx context.Context, user domain.UserID) (*domain.LedgerStats, error)

	// TopBorrowers returns up to limit borrowers with a positive balance,
	// highest balance first.
	TopBorrowers(ctx context.Context, user domain.UserID, limit int) ([]*domain.Borrower, error)

	// CountOverdueDebts counts unsettled debts whose due date is past asOf.
	CountOverdueDebts(ctx context.Context, asOf time.Time) (int64, error)

	// ListUsers enumerates the distinct users that have borrowers.
	ListUsers(ctx context.Context) ([]domain.UserID, error)
}

// TransactionRepository defines the read-only interface over the user's
// transaction history and budgets that the analytics engine consumes.
type TransactionRepository interface {
	// MonthlyExpenseTotals groups expense sums by calendar month (YYYY-MM)
	// for transactions on or after since, newest month first.
	MonthlyExpenseTotals(ctx context.Context, user domain.UserID, since time.Time) ([]*domain.MonthlyTotal, error)

	// TopExpenseCategory returns the highest-spend expense category in the
	// [from, to) window, or nil when there are no expenses.
	TopExpenseCategory(ctx context.Context, user domain.UserID, from, to time.Time) (*domain.CategoryTotal, error)

	// CategorySpendWithBudgets lists every expense category visible to the
	// user with its configured budget limit (0 if unset) and its expense sum
	// in the [from, to) window.
	CategorySpendWithBudgets(ctx context.Context, user domain.UserID, from, to time.Time) ([]*domain.BudgetStatus, error)

	// ExpensesSince returns the user's expense rows on or after since.
	ExpensesSince(ctx context.Context, user domain.UserID, since time.Time) ([]*domain.ExpenseRecord, error)

	// TotalBudgetLimit sums all the user's category budget limits.
	TotalBudgetLimit(ctx context.Context, user domain.UserID) (decimal.Decimal, error)
}
