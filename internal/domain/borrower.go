package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Borrower is a peer-lending counterparty. The three totals are cached
// aggregates over the borrower's debts; current_balance must always equal
// total_lent - total_repaid and is corrected on every lend, repay and delete.
type Borrower struct {
	ID             int64           `json:"id" db:"id"`
	UserID         UserID          `json:"user_id" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	TotalLent      decimal.Decimal `json:"total_lent" db:"total_lent"`
	TotalRepaid    decimal.Decimal `json:"total_repaid" db:"total_repaid"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	LastActivity   time.Time       `json:"last_activity" db:"last_activity"`
}

// LedgerStats aggregates a user's borrowers for the dashboard.
type LedgerStats struct {
	TotalLent   decimal.Decimal `json:"total_lent" db:"total_lent"`
	TotalRepaid decimal.Decimal `json:"total_repaid" db:"total_repaid"`
	Outstanding decimal.Decimal `json:"outstanding" db:"outstanding"`
}

type DashboardResponse struct {
	Stats        *LedgerStats `json:"stats"`
	TopBorrowers []*Borrower  `json:"top_borrowers"`
}
