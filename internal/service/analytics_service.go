package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/ledger-engine/internal/config"
	"github.com/finsight/ledger-engine/internal/domain"
	"github.com/finsight/ledger-engine/internal/repository"
	customError "github.com/finsight/ledger-engine/pkg/errors"
)

// Most recent month carries half the weight, then 30%, then 20%. A missing
// month drops its weight and the remainder is renormalized.
var predictionWeights = []decimal.Decimal{
	decimal.NewFromFloat(0.5),
	decimal.NewFromFloat(0.3),
	decimal.NewFromFloat(0.2),
}

var hundred = decimal.NewFromInt(100)

// AnalyticsService derives dashboards, predictions and insights from the
// user's transaction history. All reads; it owns no data.
type AnalyticsService interface {
	PredictNextMonthSpend(ctx context.Context, user domain.UserID) (*domain.PredictionResponse, error)
	GenerateInsights(ctx context.Context, user domain.UserID) ([]*domain.Insight, error)
	BudgetStatus(ctx context.Context, user domain.UserID) ([]*domain.BudgetStatus, error)
	BudgetHistory(ctx context.Context, user domain.UserID) ([]*domain.BudgetBucket, error)
}

type SpendAnalyticsService struct {
	repo   repository.TransactionRepository
	config *config.Config
	log    *logrus.Logger

	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time
}

func NewSpendAnalyticsService(
	repo repository.TransactionRepository,
	cfg *config.Config,
	log *logrus.Logger,
) *SpendAnalyticsService {
	return &SpendAnalyticsService{
		repo:   repo,
		config: cfg,
		log:    log,
		Clock:  time.Now,
	}
}

// PredictNextMonthSpend is a weighted average over the last three months of
// expenses, not a statistical forecast.
func (s *SpendAnalyticsService) PredictNextMonthSpend(ctx context.Context, user domain.UserID) (*domain.PredictionResponse, error) {
	now := s.Clock()

	totals, err := s.repo.MonthlyExpenseTotals(ctx, user, now.AddDate(0, -3, 0))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(totals) == 0 {
		return &domain.PredictionResponse{PredictedSpend: decimal.Zero}, nil
	}

	prediction := decimal.Zero
	totalWeight := decimal.Zero

	for i, monthly := range totals {
		if i >= len(predictionWeights) {
			break
		}
		prediction = prediction.Add(monthly.Total.Mul(predictionWeights[i]))
		totalWeight = totalWeight.Add(predictionWeights[i])
	}

	if totalWeight.Sign() > 0 {
		prediction = prediction.Div(totalWeight)
	}

	return &domain.PredictionResponse{PredictedSpend: prediction.Round(2)}, nil
}

// GenerateInsights runs two independent checks: a month-over-month spending
// spike beyond the configured threshold, and the top expense category of the
// current calendar month. Zero to two entries come back.
func (s *SpendAnalyticsService) GenerateInsights(ctx context.Context, user domain.UserID) ([]*domain.Insight, error) {
	now := s.Clock()
	insights := make([]*domain.Insight, 0, 2)

	totals, err := s.repo.MonthlyExpenseTotals(ctx, user, now.AddDate(0, -2, 0))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(totals) >= 2 && totals[1].Total.Sign() > 0 {
		thisMonth := totals[0].Total
		lastMonth := totals[1].Total

		threshold := decimal.NewFromInt(int64(s.config.Business.SpikeThresholdPct)).Div(hundred)
		upperBound := lastMonth.Mul(decimal.NewFromInt(1).Add(threshold))
		lowerBound := lastMonth.Mul(decimal.NewFromInt(1).Sub(threshold))

		if thisMonth.GreaterThan(upperBound) {
			diff := thisMonth.Sub(lastMonth).Div(lastMonth).Mul(hundred).IntPart()
			insights = append(insights, &domain.Insight{
				Type:  domain.InsightTypeWarning,
				Text:  fmt.Sprintf("You spent %d%% more this month than last month.", diff),
				Value: fmt.Sprintf("+%d%%", diff),
			})
		} else if thisMonth.LessThan(lowerBound) {
			diff := lastMonth.Sub(thisMonth).Div(lastMonth).Mul(hundred).IntPart()
			insights = append(insights, &domain.Insight{
				Type:  domain.InsightTypeSuccess,
				Text:  fmt.Sprintf("Great job! Spending is down %d%% compared to last month.", diff),
				Value: fmt.Sprintf("-%d%%", diff),
			})
		}
	}

	monthStart := startOfMonth(now)
	top, err := s.repo.TopExpenseCategory(ctx, user, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if top != nil {
		insights = append(insights, &domain.Insight{
			Type:  domain.InsightTypeInfo,
			Text:  fmt.Sprintf("'%s' is your highest spending category this month.", top.Name),
			Value: fmt.Sprintf("₹%s", top.Total.StringFixed(0)),
		})
	}

	return insights, nil
}

// BudgetStatus reports every expense category against its configured limit for
// the current calendar month.
func (s *SpendAnalyticsService) BudgetStatus(ctx context.Context, user domain.UserID) ([]*domain.BudgetStatus, error) {
	monthStart := startOfMonth(s.Clock())

	budgets, err := s.repo.CategorySpendWithBudgets(ctx, user, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, budget := range budgets {
		if budget.Limit.Sign() > 0 {
			budget.Percentage, _ = budget.Spent.Div(budget.Limit).Mul(hundred).Float64()
			budget.IsOver = budget.Spent.GreaterThan(budget.Limit)
		}
		// A zero limit means unlimited: percentage 0, never over.
	}

	return budgets, nil
}

// BudgetHistory buckets the last six months of expenses. Buckets step back in
// 30-day strides from today, while each transaction lands in the bucket of its
// actual calendar year-month.
func (s *SpendAnalyticsService) BudgetHistory(ctx context.Context, user domain.UserID) ([]*domain.BudgetBucket, error) {
	now := s.Clock()

	totalLimit, err := s.repo.TotalBudgetLimit(ctx, user)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	expenses, err := s.repo.ExpensesSince(ctx, user, now.AddDate(0, -6, 0))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	keys := make([]string, 0, 6)
	buckets := make(map[string]*domain.BudgetBucket, 6)

	for i := 5; i >= 0; i-- {
		stride := now.AddDate(0, 0, -i*30)
		key := stride.Format("2006-01")
		if _, ok := buckets[key]; ok {
			continue
		}
		buckets[key] = &domain.BudgetBucket{
			Month:       stride.Format("Jan"),
			TotalSpent:  decimal.Zero,
			BudgetLimit: totalLimit,
		}
		keys = append(keys, key)
	}

	for _, expense := range expenses {
		if bucket, ok := buckets[expense.Date.Format("2006-01")]; ok {
			bucket.TotalSpent = bucket.TotalSpent.Add(expense.Amount)
		}
	}

	history := make([]*domain.BudgetBucket, 0, len(keys))
	for _, key := range keys {
		history = append(history, buckets[key])
	}

	return history, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
