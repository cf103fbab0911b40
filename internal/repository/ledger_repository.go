package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/finsight/ledger-engine/internal/domain"
)

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) RecordLend(ctx context.Context, user domain.UserID, newBorrowerName string, debt *domain.Debt) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	borrowerID := debt.BorrowerID
	if borrowerID == 0 {
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO borrowers (user_id, name, total_lent, total_repaid, current_balance, last_activity)
			VALUES ($1, $2, 0, 0, 0, NOW())
			RETURNING id
		`, user, newBorrowerName).Scan(&borrowerID)
		if err != nil {
			return 0, err
		}
		debt.BorrowerID = borrowerID
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO debts (borrower_id, amount, date, due_date, reason, status, interest_rate, interest_period, amount_repaid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
		RETURNING id
	`,
		borrowerID,
		debt.Amount,
		debt.Date,
		debt.DueDate,
		debt.Reason,
		debt.Status,
		debt.InterestRate,
		debt.InterestPeriod,
	).Scan(&debt.ID)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE borrowers
		SET total_lent = total_lent + $1,
		    current_balance = current_balance + $1,
		    last_activity = NOW()
		WHERE id = $2
	`, debt.Amount, borrowerID)
	if err != nil {
		return 0, err
	}

	return borrowerID, tx.Commit()
}

func (r *ledgerRepository) RecordRepayment(ctx context.Context, debt *domain.Debt, repayment *domain.Repayment, newRepaid decimal.Decimal, newStatus string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO repayments (debt_id, amount, date, mode)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, repayment.DebtID, repayment.Amount, repayment.Date, repayment.Mode).Scan(&repayment.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE debts
		SET amount_repaid = $1, status = $2
		WHERE id = $3
	`, newRepaid, newStatus, debt.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE borrowers
		SET total_repaid = total_repaid + $1,
		    current_balance = current_balance - $1,
		    last_activity = NOW()
		WHERE id = $2
	`, repayment.Amount, debt.BorrowerID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ledgerRepository) DeleteDebt(ctx context.Context, debt *domain.Debt) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Aggregates are corrected from the debt's pre-delete values.
	balanceToReduce := debt.Amount.Sub(debt.AmountRepaid)

	_, err = tx.ExecContext(ctx, `
		UPDATE borrowers
		SET total_lent = total_lent - $1,
		    total_repaid = total_repaid - $2,
		    current_balance = current_balance - $3
		WHERE id = $4
	`, debt.Amount, debt.AmountRepaid, balanceToReduce, debt.BorrowerID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM debts WHERE id = $1`, debt.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ledgerRepository) DeleteBorrower(ctx context.Context, borrowerID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM borrowers WHERE id = $1`, borrowerID)
	return err
}

func (r *ledgerRepository) GetBorrower(ctx context.Context, borrowerID int64) (*domain.Borrower, error) {
	query := `
		SELECT id, user_id, name, total_lent, total_repaid, current_balance, last_activity
		FROM borrowers
		WHERE id = $1
	`

	var borrower domain.Borrower
	if err := r.db.GetContext(ctx, &borrower, query, borrowerID); err != nil {
		return nil, err
	}

	return &borrower, nil
}

func (r *ledgerRepository) ListBorrowers(ctx context.Context, user domain.UserID) ([]*domain.Borrower, error) {
	query := `
		SELECT id, user_id, name, total_lent, total_repaid, current_balance, last_activity
		FROM borrowers
		WHERE user_id = $1
		ORDER BY last_activity DESC
	`

	var borrowers []*domain.Borrower
	if err := r.db.SelectContext(ctx, &borrowers, query, user); err != nil {
		return nil, err
	}

	return borrowers, nil
}

func (r *ledgerRepository) GetDebt(ctx context.Context, debtID int64) (*domain.Debt, error) {
	query := `
		SELECT id, borrower_id, amount, date, due_date, reason, status, interest_rate, interest_period, amount_repaid
		FROM debts
		WHERE id = $1
	`

	var debt domain.Debt
	if err := r.db.GetContext(ctx, &debt, query, debtID); err != nil {
		return nil, err
	}

	return &debt, nil
}

func (r *ledgerRepository) ListDebtsByBorrower(ctx context.Context, borrowerID int64) ([]*domain.Debt, error) {
	query := `
		SELECT id, borrower_id, amount, date, due_date, reason, status, interest_rate, interest_period, amount_repaid
		FROM debts
		WHERE borrower_id = $1
		ORDER BY date DESC
	`

	var debts []*domain.Debt
	if err := r.db.SelectContext(ctx, &debts, query, borrowerID); err != nil {
		return nil, err
	}

	return debts, nil
}

func (r *ledgerRepository) ListRepaymentsByBorrower(ctx context.Context, borrowerID int64) ([]*domain.RepaymentEntry, error) {
	query := `
		SELECT r.id, r.debt_id, r.amount, r.date, r.mode, d.reason AS debt_reason
		FROM repayments r
		JOIN debts d ON r.debt_id = d.id
		WHERE d.borrower_id = $1
		ORDER BY r.date DESC
	`

	var repayments []*domain.RepaymentEntry
	if err := r.db.SelectContext(ctx, &repayments, query, borrowerID); err != nil {
		return nil, err
	}

	return repayments, nil
}

func (r *ledgerRepository) DashboardStats(ctx context.Context, user domain.UserID) (*domain.LedgerStats, error) {
	query := `
		SELECT COALESCE(SUM(total_lent), 0) AS total_lent,
		       COALESCE(SUM(total_repaid), 0) AS total_repaid,
		       COALESCE(SUM(current_balance), 0) AS outstanding
		FROM borrowers
		WHERE user_id = $1
	`

	var stats domain.LedgerStats
	if err := r.db.GetContext(ctx, &stats, query, user); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *ledgerRepository) TopBorrowers(ctx context.Context, user domain.UserID, limit int) ([]*domain.Borrower, error) {
	query := `
		SELECT id, user_id, name, total_lent, total_repaid, current_balance, last_activity
		FROM borrowers
		WHERE user_id = $1 AND current_balance > 0
		ORDER BY current_balance DESC
		LIMIT $2
	`

	var borrowers []*domain.Borrower
	if err := r.db.SelectContext(ctx, &borrowers, query, user, limit); err != nil {
		return nil, err
	}

	return borrowers, nil
}

func (r *ledgerRepository) CountOverdueDebts(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM debts
		WHERE status <> 'Paid' AND due_date IS NOT NULL AND due_date < $1
	`

	// Compare calendar dates: a debt due today is not yet overdue.
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, day); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ledgerRepository) ListUsers(ctx context.Context) ([]domain.UserID, error) {
	var users []domain.UserID
	if err := r.db.SelectContext(ctx, &users, `SELECT DISTINCT user_id FROM borrowers ORDER BY user_id`); err != nil {
		return nil, err
	}

	return users, nil
}
