package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the unit the interest rate is quoted per.
type Period string

const (
	PeriodDaily   Period = "Daily"
	PeriodMonthly Period = "Monthly"
	PeriodYearly  Period = "Yearly"
)

var (
	hundred      = decimal.NewFromInt(100)
	daysPerMonth = decimal.NewFromFloat(30.44)
	daysPerYear  = decimal.NewFromFloat(365.25)
)

// Accrued computes simple (non-compounding) interest owed on an outstanding
// principal since the loan start date, as of the given evaluation date.
// A zero or missing rate accrues nothing, as does a same-day or future-dated
// start. Unrecognized periods accrue nothing rather than failing the read.
func Accrued(outstanding, ratePct decimal.Decimal, period Period, start, asOf time.Time) decimal.Decimal {
	if outstanding.Sign() <= 0 || ratePct.Sign() <= 0 {
		return decimal.Zero
	}

	days := ElapsedDays(start, asOf)
	if days <= 0 {
		return decimal.Zero
	}

	elapsed := decimal.NewFromInt(int64(days))

	var accrued decimal.Decimal
	switch period {
	case PeriodDaily:
		accrued = outstanding.Mul(ratePct).Mul(elapsed).Div(hundred)
	case PeriodMonthly:
		accrued = outstanding.Mul(ratePct).Mul(elapsed.Div(daysPerMonth)).Div(hundred)
	case PeriodYearly:
		accrued = outstanding.Mul(ratePct).Mul(elapsed.Div(daysPerYear)).Div(hundred)
	default:
		return decimal.Zero
	}

	return accrued.Round(2)
}

// ElapsedDays returns the number of whole calendar days between two dates,
// ignoring the time-of-day component.
func ElapsedDays(start, asOf time.Time) int {
	s := truncateToDate(start)
	a := truncateToDate(asOf)
	return int(a.Sub(s).Hours() / 24)
}

// IsOverdue reports whether asOf is strictly past the due date, comparing
// calendar dates only.
func IsOverdue(due, asOf time.Time) bool {
	return truncateToDate(asOf).After(truncateToDate(due))
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
