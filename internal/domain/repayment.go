package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Repayment is one discrete payment against a debt. Rows are append-only and
// vanish only when their debt or borrower is deleted (FK cascade).
type Repayment struct {
	ID     int64           `json:"id" db:"id"`
	DebtID int64           `json:"debt_id" db:"debt_id"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	Date   time.Time       `json:"date" db:"date"`
	Mode   string          `json:"mode" db:"mode"`
}

// RepaymentEntry joins a repayment with its debt's reason for ledger views.
type RepaymentEntry struct {
	Repayment
	DebtReason string `json:"debt_reason" db:"debt_reason"`
}

type LedgerResponse struct {
	Borrower      *Borrower         `json:"borrower"`
	Debts         []*DebtView       `json:"debts"`
	Repayments    []*RepaymentEntry `json:"repayments"`
	TotalInterest decimal.Decimal   `json:"total_interest"`
	Risks         []string          `json:"risks"`
}
