package domain

import "github.com/shopspring/decimal"

const (
	InsightTypeWarning = "warning"
	InsightTypeSuccess = "success"
	InsightTypeInfo    = "info"
)

// Insight is one rule-derived observation about recent spending.
type Insight struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

type PredictionResponse struct {
	PredictedSpend decimal.Decimal `json:"predicted_spend"`
}

// BudgetStatus reports one expense category against its configured limit for
// the current calendar month. Percentage and IsOver are derived, not stored;
// a zero limit means unlimited and never reads as over budget.
type BudgetStatus struct {
	CategoryID int64           `json:"category_id" db:"category_id"`
	Name       string          `json:"name" db:"name"`
	Limit      decimal.Decimal `json:"budget_limit" db:"budget_limit"`
	Spent      decimal.Decimal `json:"spent" db:"spent"`
	Percentage float64         `json:"percentage" db:"-"`
	IsOver     bool            `json:"is_over" db:"-"`
}

// BudgetBucket is one month of the six-bucket budget history.
type BudgetBucket struct {
	Month       string          `json:"month"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	BudgetLimit decimal.Decimal `json:"budget_limit"`
}
