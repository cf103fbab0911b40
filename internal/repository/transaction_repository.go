package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/finsight/ledger-engine/internal/domain"
)

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) MonthlyExpenseTotals(ctx context.Context, user domain.UserID, since time.Time) ([]*domain.MonthlyTotal, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM') AS month, COALESCE(SUM(amount), 0) AS total
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND date >= $2
		GROUP BY to_char(date, 'YYYY-MM')
		ORDER BY month DESC
	`

	var totals []*domain.MonthlyTotal
	if err := r.db.SelectContext(ctx, &totals, query, user, since); err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *transactionRepository) TopExpenseCategory(ctx context.Context, user domain.UserID, from, to time.Time) (*domain.CategoryTotal, error) {
	query := `
		SELECT c.name, SUM(t.amount) AS total
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.user_id = $1 AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
		GROUP BY c.name
		ORDER BY total DESC
		LIMIT 1
	`

	var top domain.CategoryTotal
	err := r.db.GetContext(ctx, &top, query, user, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &top, nil
}

func (r *transactionRepository) CategorySpendWithBudgets(ctx context.Context, user domain.UserID, from, to time.Time) ([]*domain.BudgetStatus, error) {
	// Default (global) categories have a NULL user_id and are visible to everyone.
	query := `
		SELECT c.id AS category_id,
		       c.name,
		       COALESCE(b.amount, 0) AS budget_limit,
		       COALESCE(SUM(t.amount), 0) AS spent
		FROM categories c
		LEFT JOIN budgets b ON c.id = b.category_id AND b.user_id = $1
		LEFT JOIN transactions t ON c.id = t.category_id
		     AND t.user_id = $1
		     AND t.type = 'expense'
		     AND t.date >= $2 AND t.date < $3
		WHERE (c.user_id = $1 OR c.user_id IS NULL) AND c.type = 'expense'
		GROUP BY c.id, c.name, b.amount
		ORDER BY c.id
	`

	var budgets []*domain.BudgetStatus
	if err := r.db.SelectContext(ctx, &budgets, query, user, from, to); err != nil {
		return nil, err
	}

	return budgets, nil
}

func (r *transactionRepository) ExpensesSince(ctx context.Context, user domain.UserID, since time.Time) ([]*domain.ExpenseRecord, error) {
	query := `
		SELECT date, amount
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND date >= $2
		ORDER BY date ASC
	`

	var expenses []*domain.ExpenseRecord
	if err := r.db.SelectContext(ctx, &expenses, query, user, since); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *transactionRepository) TotalBudgetLimit(ctx context.Context, user domain.UserID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM budgets WHERE user_id = $1`, user)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
