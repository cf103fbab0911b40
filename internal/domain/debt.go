package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/ledger-engine/pkg/interest"
)

const (
	DebtStatusPending = "Pending"
	DebtStatusPartial = "Partial"
	DebtStatusPaid    = "Paid"
)

// Debt is a single lending event against a borrower. amount_repaid is a
// running total that only the repayment paths move, never directly the API.
type Debt struct {
	ID             int64           `json:"id" db:"id"`
	BorrowerID     int64           `json:"borrower_id" db:"borrower_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Date           time.Time       `json:"date" db:"date"`
	DueDate        *time.Time      `json:"due_date,omitempty" db:"due_date"`
	Reason         string          `json:"reason" db:"reason"`
	Status         string          `json:"status" db:"status"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestPeriod interest.Period `json:"interest_period" db:"interest_period"`
	AmountRepaid   decimal.Decimal `json:"amount_repaid" db:"amount_repaid"`
}

// Outstanding is the still-unpaid share of the principal.
func (d *Debt) Outstanding() decimal.Decimal {
	return d.Amount.Sub(d.AmountRepaid)
}

// DebtView is a Debt annotated for the ledger read projection.
type DebtView struct {
	Debt
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	TotalDue        decimal.Decimal `json:"total_due"`
	IsOverdue       bool            `json:"is_overdue"`
}

// DTOs for requests and responses

type LendRequest struct {
	BorrowerID      *int64          `json:"borrower_id" validate:"omitempty,gt=0"`
	NewBorrowerName string          `json:"new_borrower_name" validate:"omitempty,min=1,max=100"`
	Amount          decimal.Decimal `json:"amount" validate:"dgt0"`
	Date            string          `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate         string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Reason          string          `json:"reason" validate:"required,max=255"`
	InterestRate    decimal.Decimal `json:"interest_rate" validate:"dgte0"`
	InterestPeriod  string          `json:"interest_period" validate:"omitempty,oneof=Daily Monthly Yearly"`
}

type RepayRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"dgt0"`
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
	Mode   string          `json:"mode" validate:"required,max=50"`
}

type MarkPaidRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SettleResult reports the outcome of MarkFullyPaid. AlreadyPaid means nothing
// was outstanding and no repayment row was produced.
type SettleResult struct {
	AlreadyPaid bool       `json:"already_paid"`
	Repayment   *Repayment `json:"repayment,omitempty"`
}
