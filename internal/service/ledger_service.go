package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/ledger-engine/internal/config"
	"github.com/finsight/ledger-engine/internal/domain"
	"github.com/finsight/ledger-engine/internal/repository"
	customError "github.com/finsight/ledger-engine/pkg/errors"
	"github.com/finsight/ledger-engine/pkg/interest"
)

const (
	dashboardCachePrefix = "ledger:dashboard:"
	topBorrowersLimit    = 3
	dateLayout           = "2006-01-02"
)

// LedgerService is the debt ledger engine: it moves money between lend and
// repay operations while keeping the borrower aggregates consistent.
type LedgerService interface {
	Lend(ctx context.Context, user domain.UserID, request *domain.LendRequest) (*domain.Debt, error)
	Repay(ctx context.Context, debtID int64, request *domain.RepayRequest) (*domain.Repayment, error)
	MarkFullyPaid(ctx context.Context, debtID int64, request *domain.MarkPaidRequest) (*domain.SettleResult, error)
	DeleteDebt(ctx context.Context, debtID int64) error
	DeleteBorrower(ctx context.Context, borrowerID int64) error
	ListBorrowers(ctx context.Context, user domain.UserID) ([]*domain.Borrower, error)
	GetLedger(ctx context.Context, borrowerID int64) (*domain.LedgerResponse, error)
	GetDashboard(ctx context.Context, user domain.UserID) (*domain.DashboardResponse, error)
	DailySweep(ctx context.Context) error
	LendingSummary(ctx context.Context) error
}

type DebtLedgerService struct {
	repo   repository.LedgerRepository
	redis  *redis.Client
	config *config.Config
	log    *logrus.Logger

	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time
}

func NewDebtLedgerService(
	repo repository.LedgerRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	log *logrus.Logger,
) *DebtLedgerService {
	return &DebtLedgerService{
		repo:   repo,
		redis:  redisClient,
		config: cfg,
		log:    log,
		Clock:  time.Now,
	}
}

// Lend records a new debt against an existing borrower or a freshly created
// one, bumping the borrower aggregates atomically with the insert.
func (s *DebtLedgerService) Lend(ctx context.Context, user domain.UserID, request *domain.LendRequest) (*domain.Debt, error) {
	hasID := request.BorrowerID != nil && *request.BorrowerID > 0
	hasName := request.NewBorrowerName != ""

	if hasID == hasName {
		return nil, customError.WrapInvalidInput("exactly one of borrower_id or new_borrower_name is required")
	}

	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidInput("amount must be greater than zero")
	}
	if request.InterestRate.IsNegative() {
		return nil, customError.WrapInvalidInput("interest_rate must not be negative")
	}

	date, err := time.Parse(dateLayout, request.Date)
	if err != nil {
		return nil, customError.WrapInvalidInput("date must be formatted YYYY-MM-DD")
	}

	var dueDate *time.Time
	if request.DueDate != "" {
		due, err := time.Parse(dateLayout, request.DueDate)
		if err != nil {
			return nil, customError.WrapInvalidInput("due_date must be formatted YYYY-MM-DD")
		}
		dueDate = &due
	}

	period := interest.Period(request.InterestPeriod)
	if period == "" {
		period = interest.PeriodMonthly
	}

	debt := &domain.Debt{
		Amount:         request.Amount,
		Date:           date,
		DueDate:        dueDate,
		Reason:         request.Reason,
		Status:         domain.DebtStatusPending,
		InterestRate:   request.InterestRate,
		InterestPeriod: period,
		AmountRepaid:   decimal.Zero,
	}

	if hasID {
		if _, err := s.repo.GetBorrower(ctx, *request.BorrowerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapBorrowerNotFound(*request.BorrowerID)
			}
			return nil, customError.WrapDatabaseError(err)
		}
		debt.BorrowerID = *request.BorrowerID
	}

	if _, err := s.repo.RecordLend(ctx, user, request.NewBorrowerName, debt); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx, user)

	s.log.WithFields(logrus.Fields{
		"user":        user,
		"borrower_id": debt.BorrowerID,
		"debt_id":     debt.ID,
		"amount":      debt.Amount,
	}).Info("lending recorded")

	return debt, nil
}

// Repay applies a repayment to a debt. Two concurrent repayments against the
// same debt race on amount_repaid and can lose an update; the transaction
// boundary guarantees atomicity, not serialization.
func (s *DebtLedgerService) Repay(ctx context.Context, debtID int64, request *domain.RepayRequest) (*domain.Repayment, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidInput("amount must be greater than zero")
	}

	date, err := time.Parse(dateLayout, request.Date)
	if err != nil {
		return nil, customError.WrapInvalidInput("date must be formatted YYYY-MM-DD")
	}

	debt, err := s.getDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	applied := request.Amount
	outstanding := debt.Outstanding()

	switch s.config.Business.RepaymentPolicy {
	case config.RepaymentPolicyLegacy:
		// Original behavior: overshoot and repay-after-Paid both go through.
	case config.RepaymentPolicyClamp:
		if outstanding.Sign() <= 0 {
			return nil, customError.WrapDebtAlreadySettled(debtID)
		}
		if applied.GreaterThan(outstanding) {
			applied = outstanding
		}
	default: // reject
		if debt.Status == domain.DebtStatusPaid || outstanding.Sign() <= 0 {
			return nil, customError.WrapDebtAlreadySettled(debtID)
		}
		if applied.GreaterThan(outstanding) {
			return nil, customError.WrapRepaymentExceedsDebt(debtID, outstanding.String())
		}
	}

	newRepaid := debt.AmountRepaid.Add(applied)
	newStatus := domain.DebtStatusPartial
	if newRepaid.GreaterThanOrEqual(debt.Amount) {
		newStatus = domain.DebtStatusPaid
	}

	repayment := &domain.Repayment{
		DebtID: debtID,
		Amount: applied,
		Date:   date,
		Mode:   request.Mode,
	}

	if err := s.repo.RecordRepayment(ctx, debt, repayment, newRepaid, newStatus); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboardForBorrower(ctx, debt.BorrowerID)

	s.log.WithFields(logrus.Fields{
		"debt_id": debtID,
		"amount":  applied,
		"status":  newStatus,
	}).Info("repayment recorded")

	return repayment, nil
}

// MarkFullyPaid settles the remaining principal with a synthesized cash
// repayment. A debt with nothing outstanding is a no-op success.
func (s *DebtLedgerService) MarkFullyPaid(ctx context.Context, debtID int64, request *domain.MarkPaidRequest) (*domain.SettleResult, error) {
	date, err := time.Parse(dateLayout, request.Date)
	if err != nil {
		return nil, customError.WrapInvalidInput("date must be formatted YYYY-MM-DD")
	}

	debt, err := s.getDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}

	remaining := debt.Outstanding()
	if remaining.Sign() <= 0 {
		return &domain.SettleResult{AlreadyPaid: true}, nil
	}

	repayment := &domain.Repayment{
		DebtID: debtID,
		Amount: remaining,
		Date:   date,
		Mode:   "Cash",
	}

	if err := s.repo.RecordRepayment(ctx, debt, repayment, debt.Amount, domain.DebtStatusPaid); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboardForBorrower(ctx, debt.BorrowerID)

	s.log.WithFields(logrus.Fields{"debt_id": debtID, "amount": remaining}).Info("debt settled")

	return &domain.SettleResult{Repayment: repayment}, nil
}

// DeleteDebt removes a debt and corrects the borrower aggregates using the
// debt's values as they stood before the delete.
func (s *DebtLedgerService) DeleteDebt(ctx context.Context, debtID int64) error {
	debt, err := s.getDebt(ctx, debtID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteDebt(ctx, debt); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateDashboardForBorrower(ctx, debt.BorrowerID)

	s.log.WithFields(logrus.Fields{"debt_id": debtID}).Info("debt deleted")

	return nil
}

// DeleteBorrower removes the borrower and, through the store's cascade, every
// debt and repayment under it. No aggregate bookkeeping is needed.
func (s *DebtLedgerService) DeleteBorrower(ctx context.Context, borrowerID int64) error {
	borrower, err := s.getBorrower(ctx, borrowerID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBorrower(ctx, borrowerID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx, borrower.UserID)

	s.log.WithFields(logrus.Fields{"borrower_id": borrowerID}).Info("borrower deleted")

	return nil
}

func (s *DebtLedgerService) ListBorrowers(ctx context.Context, user domain.UserID) ([]*domain.Borrower, error) {
	borrowers, err := s.repo.ListBorrowers(ctx, user)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return borrowers, nil
}

// GetLedger builds the read projection for one borrower: debts annotated with
// accrued interest, the joined repayment history, and deduplicated risk flags.
func (s *DebtLedgerService) GetLedger(ctx context.Context, borrowerID int64) (*domain.LedgerResponse, error) {
	borrower, err := s.getBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	debts, err := s.repo.ListDebtsByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.Clock()
	totalInterest := decimal.Zero
	risks := make([]string, 0)
	views := make([]*domain.DebtView, 0, len(debts))

	for _, debt := range debts {
		outstanding := debt.Outstanding()
		accrued := interest.Accrued(outstanding, debt.InterestRate, debt.InterestPeriod, debt.Date, now)
		totalInterest = totalInterest.Add(accrued)

		view := &domain.DebtView{
			Debt:            *debt,
			AccruedInterest: accrued,
			TotalDue:        outstanding.Add(accrued),
		}

		if debt.Status != domain.DebtStatusPaid && debt.DueDate != nil && interest.IsOverdue(*debt.DueDate, now) {
			view.IsOverdue = true
			risks = append(risks, "Overdue: "+debt.Reason)
		}

		views = append(views, view)
	}

	if borrower.CurrentBalance.GreaterThan(s.config.GetHighBalanceThreshold()) {
		risks = append(risks, "High Outstanding Balance")
	}

	repayments, err := s.repo.ListRepaymentsByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LedgerResponse{
		Borrower:      borrower,
		Debts:         views,
		Repayments:    repayments,
		TotalInterest: totalInterest,
		Risks:         dedupe(risks),
	}, nil
}

// GetDashboard aggregates the user's borrowers, serving from the redis cache
// when a fresh copy exists.
func (s *DebtLedgerService) GetDashboard(ctx context.Context, user domain.UserID) (*domain.DashboardResponse, error) {
	if cached := s.cachedDashboard(ctx, user); cached != nil {
		return cached, nil
	}

	stats, err := s.repo.DashboardStats(ctx, user)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	top, err := s.repo.TopBorrowers(ctx, user, topBorrowersLimit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	dashboard := &domain.DashboardResponse{
		Stats:        stats,
		TopBorrowers: top,
	}

	s.cacheDashboard(ctx, user, dashboard)

	return dashboard, nil
}

// DailySweep logs the overdue debt count and drops every cached dashboard so
// accrued-interest views never serve stale aggregates for more than a day.
func (s *DebtLedgerService) DailySweep(ctx context.Context) error {
	overdue, err := s.repo.CountOverdueDebts(ctx, s.Clock())
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{"overdue_debts": overdue}).Info("daily overdue sweep")

	if s.redis == nil {
		return nil
	}

	iter := s.redis.Scan(ctx, 0, dashboardCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			s.log.WithError(customError.WrapCacheError(err)).Warn("dropping cached dashboard")
		}
	}
	if err := iter.Err(); err != nil {
		return customError.WrapCacheError(err)
	}

	return nil
}

// LendingSummary logs per-user lending aggregates for the weekly report job.
func (s *DebtLedgerService) LendingSummary(ctx context.Context) error {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, user := range users {
		stats, err := s.repo.DashboardStats(ctx, user)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		s.log.WithFields(logrus.Fields{
			"user":         user,
			"total_lent":   stats.TotalLent,
			"total_repaid": stats.TotalRepaid,
			"outstanding":  stats.Outstanding,
		}).Info("weekly lending summary")
	}

	return nil
}

func (s *DebtLedgerService) getDebt(ctx context.Context, debtID int64) (*domain.Debt, error) {
	debt, err := s.repo.GetDebt(ctx, debtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDebtNotFound(debtID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return debt, nil
}

func (s *DebtLedgerService) getBorrower(ctx context.Context, borrowerID int64) (*domain.Borrower, error) {
	borrower, err := s.repo.GetBorrower(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapBorrowerNotFound(borrowerID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return borrower, nil
}

func (s *DebtLedgerService) cachedDashboard(ctx context.Context, user domain.UserID) *domain.DashboardResponse {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, dashboardCachePrefix+user.String()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(customError.WrapCacheError(err)).Warn("reading cached dashboard")
		}
		return nil
	}

	var dashboard domain.DashboardResponse
	if err := json.Unmarshal([]byte(raw), &dashboard); err != nil {
		return nil
	}

	return &dashboard
}

func (s *DebtLedgerService) cacheDashboard(ctx context.Context, user domain.UserID, dashboard *domain.DashboardResponse) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(dashboard)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, dashboardCachePrefix+user.String(), raw, s.config.GetDashboardCacheTTL()).Err(); err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warn("caching dashboard")
	}
}

func (s *DebtLedgerService) invalidateDashboard(ctx context.Context, user domain.UserID) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, dashboardCachePrefix+user.String()).Err(); err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warn("invalidating cached dashboard")
	}
}

func (s *DebtLedgerService) invalidateDashboardForBorrower(ctx context.Context, borrowerID int64) {
	if s.redis == nil {
		return
	}

	borrower, err := s.repo.GetBorrower(ctx, borrowerID)
	if err != nil {
		s.log.WithError(err).Warn("resolving borrower for cache invalidation")
		return
	}

	s.invalidateDashboard(ctx, borrower.UserID)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
