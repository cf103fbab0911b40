package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is a row of the user's income/expense history. The analytics
// engine consumes these read-only; writes belong to the surrounding CRUD API.
type Transaction struct {
	ID          int64           `json:"id" db:"id"`
	UserID      UserID          `json:"user_id" db:"user_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Type        string          `json:"type" db:"type"`
	CategoryID  int64           `json:"category_id" db:"category_id"`
	Date        time.Time       `json:"date" db:"date"`
	Note        string          `json:"note" db:"note"`
	PaymentMode string          `json:"payment_mode" db:"payment_mode"`
	IsRecurring bool            `json:"is_recurring" db:"is_recurring"`
}

// MonthlyTotal is one month's expense sum, keyed YYYY-MM.
type MonthlyTotal struct {
	Month string          `json:"month" db:"month"`
	Total decimal.Decimal `json:"total" db:"total"`
}

// CategoryTotal is one category's expense sum.
type CategoryTotal struct {
	Name  string          `json:"name" db:"name"`
	Total decimal.Decimal `json:"total" db:"total"`
}

// ExpenseRecord is the minimal projection budget history needs.
type ExpenseRecord struct {
	Date   time.Time       `json:"date" db:"date"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
}
