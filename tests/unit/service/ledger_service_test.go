package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finsight/ledger-engine/internal/config"
	"github.com/finsight/ledger-engine/internal/domain"
	ledgerService "github.com/finsight/ledger-engine/internal/service"
	customError "github.com/finsight/ledger-engine/pkg/errors"
	"github.com/finsight/ledger-engine/tests/mocks"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(policy string) *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			HighBalanceThreshold: "10000",
			RepaymentPolicy:      policy,
			SpikeThresholdPct:    10,
			DashboardCacheTTL:    "5m",
		},
	}
}

func newLedgerService(repo *mocks.MockLedgerRepository, policy string) *ledgerService.DebtLedgerService {
	return ledgerService.NewDebtLedgerService(repo, nil, testConfig(policy), quietLogger())
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestLend(t *testing.T) {
	tests := []struct {
		name           string
		request        *domain.LendRequest
		setupMocks     func(*mocks.MockLedgerRepository)
		expectedError  bool
		errorContains  string
		validateResult func(*testing.T, *domain.Debt)
	}{
		{
			name: "Success - New borrower",
			request: &domain.LendRequest{
				NewBorrowerName: "Ravi",
				Amount:          decimal.NewFromInt(1000),
				Date:            "2024-01-15",
				Reason:          "Medical emergency",
				InterestRate:    decimal.NewFromInt(12),
				InterestPeriod:  "Monthly",
			},
			setupMocks: func(repo *mocks.MockLedgerRepository) {
				repo.On("RecordLend", mock.Anything, domain.UserID("user-1"), "Ravi", mock.MatchedBy(func(debt *domain.Debt) bool {
					return debt.Amount.Equal(decimal.NewFromInt(1000)) &&
						debt.Status == domain.DebtStatusPending &&
						debt.AmountRepaid.IsZero()
				})).Return(int64(1), nil)
			},
			validateResult: func(t *testing.T, debt *domain.Debt) {
				assert.Equal(t, domain.DebtStatusPending, debt.Status)
				assert.Equal(t, "Medical emergency", debt.Reason)
			},
		},
		{
			name: "Success - Existing borrower, default interest period",
			request: &domain.LendRequest{
				BorrowerID: int64Ptr(7),
				Amount:     decimal.NewFromInt(500),
				Date:       "2024-01-15",
				Reason:     "Rent",
			},
			setupMocks: func(repo *mocks.MockLedgerRepository) {
				repo.On("GetBorrower", mock.Anything, int64(7)).Return(&domain.Borrower{ID: 7, UserID: "user-1"}, nil)
				repo.On("RecordLend", mock.Anything, domain.UserID("user-1"), "", mock.MatchedBy(func(debt *domain.Debt) bool {
					return debt.BorrowerID == 7 && debt.InterestPeriod == "Monthly"
				})).Return(int64(2), nil)
			},
			validateResult: func(t *testing.T, debt *domain.Debt) {
				assert.Equal(t, int64(7), debt.BorrowerID)
			},
		},
		{
			name: "Failure - Both borrower_id and new name",
			request: &domain.LendRequest{
				BorrowerID:      int64Ptr(7),
				NewBorrowerName: "Ravi",
				Amount:          decimal.NewFromInt(500),
				Date:            "2024-01-15",
				Reason:          "Rent",
			},
			setupMocks:    func(repo *mocks.MockLedgerRepository) {},
			expectedError: true,
			errorContains: "exactly one",
		},
		{
			name: "Failure - Neither borrower_id nor new name",
			request: &domain.LendRequest{
				Amount: decimal.NewFromInt(500),
				Date:   "2024-01-15",
				Reason: "Rent",
			},
			setupMocks:    func(repo *mocks.MockLedgerRepository) {},
			expectedError: true,
			errorContains: "exactly one",
		},
		{
			name: "Failure - Zero amount",
			request: &domain.LendRequest{
				NewBorrowerName: "Ravi",
				Amount:          decimal.Zero,
				Date:            "2024-01-15",
				Reason:          "Rent",
			},
			setupMocks:    func(repo *mocks.MockLedgerRepository) {},
			expectedError: true,
			errorContains: "greater than zero",
		},
		{
			name: "Failure - Negative interest rate",
			request: &domain.LendRequest{
				NewBorrowerName: "Ravi",
				Amount:          decimal.NewFromInt(500),
				Date:            "2024-01-15",
				Reason:          "Rent",
				InterestRate:    decimal.NewFromInt(-1),
			},
			setupMocks:    func(repo *mocks.MockLedgerRepository) {},
			expectedError: true,
			errorContains: "interest_rate",
		},
		{
			name: "Failure - Malformed date",
			request: &domain.LendRequest{
				NewBorrowerName: "Ravi",
				Amount:          decimal.NewFromInt(500),
				Date:            "15-01-2024",
				Reason:          "Rent",
			},
			setupMocks:    func(repo *mocks.MockLedgerRepository) {},
			expectedError: true,
			errorContains: "YYYY-MM-DD",
		},
		{
			name: "Failure - Borrower not found",
			request: &domain.LendRequest{
				BorrowerID: int64Ptr(99),
				Amount:     decimal.NewFromInt(500),
				Date:       "2024-01-15",
				Reason:     "Rent",
			},
			setupMocks: func(repo *mocks.MockLedgerRepository) {
				repo.On("GetBorrower", mock.Anything, int64(99)).Return(nil, sql.ErrNoRows)
			},
			expectedError: true,
			errorContains: "borrower not found",
		},
		{
			name: "Failure - Database error on insert",
			request: &domain.LendRequest{
				NewBorrowerName: "Ravi",
				Amount:          decimal.NewFromInt(500),
				Date:            "2024-01-15",
				Reason:          "Rent",
			},
			setupMocks: func(repo *mocks.MockLedgerRepository) {
				repo.On("RecordLend", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(int64(0), errors.New("connection refused"))
			},
			expectedError: true,
			errorContains: "database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockLedgerRepository{}
			tt.setupMocks(repo)

			service := newLedgerService(repo, config.RepaymentPolicyReject)

			debt, err := service.Lend(context.Background(), "user-1", tt.request)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, debt)
			} else {
				assert.NoError(t, err)
				if tt.validateResult != nil {
					tt.validateResult(t, debt)
				}
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestRepay(t *testing.T) {
	openDebt := func() *domain.Debt {
		return &domain.Debt{
			ID:           1,
			BorrowerID:   7,
			Amount:       decimal.NewFromInt(1000),
			AmountRepaid: decimal.NewFromInt(400),
			Status:       domain.DebtStatusPartial,
		}
	}

	tests := []struct {
		name           string
		policy         string
		debt           *domain.Debt
		amount         decimal.Decimal
		setupMocks     func(*mocks.MockLedgerRepository, *domain.Debt)
		expectedError  error
		expectedStatus string
		expectedAmount decimal.Decimal
	}{
		{
			name:   "Partial repayment keeps debt open",
			policy: config.RepaymentPolicyReject,
			debt:   openDebt(),
			amount: decimal.NewFromInt(100),
			setupMocks: func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {
				repo.On("RecordRepayment", mock.Anything, debt, mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.NewFromInt(500))
				}), domain.DebtStatusPartial).Return(nil)
			},
			expectedStatus: domain.DebtStatusPartial,
			expectedAmount: decimal.NewFromInt(100),
		},
		{
			name:   "Exact repayment settles debt",
			policy: config.RepaymentPolicyReject,
			debt:   openDebt(),
			amount: decimal.NewFromInt(600),
			setupMocks: func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {
				repo.On("RecordRepayment", mock.Anything, debt, mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.NewFromInt(1000))
				}), domain.DebtStatusPaid).Return(nil)
			},
			expectedStatus: domain.DebtStatusPaid,
			expectedAmount: decimal.NewFromInt(600),
		},
		{
			name:          "Reject - Overshoot rejected",
			policy:        config.RepaymentPolicyReject,
			debt:          openDebt(),
			amount:        decimal.NewFromInt(700),
			setupMocks:    func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {},
			expectedError: customError.ErrRepaymentExceedsDebt,
		},
		{
			name:   "Reject - Settled debt rejected",
			policy: config.RepaymentPolicyReject,
			debt: &domain.Debt{
				ID:           1,
				BorrowerID:   7,
				Amount:       decimal.NewFromInt(1000),
				AmountRepaid: decimal.NewFromInt(1000),
				Status:       domain.DebtStatusPaid,
			},
			amount:        decimal.NewFromInt(10),
			setupMocks:    func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {},
			expectedError: customError.ErrDebtAlreadySettled,
		},
		{
			name:   "Clamp - Overshoot capped at outstanding",
			policy: config.RepaymentPolicyClamp,
			debt:   openDebt(),
			amount: decimal.NewFromInt(700),
			setupMocks: func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {
				repo.On("RecordRepayment", mock.Anything, debt, mock.MatchedBy(func(r *domain.Repayment) bool {
					return r.Amount.Equal(decimal.NewFromInt(600))
				}), mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.NewFromInt(1000))
				}), domain.DebtStatusPaid).Return(nil)
			},
			expectedStatus: domain.DebtStatusPaid,
			expectedAmount: decimal.NewFromInt(600),
		},
		{
			name:   "Clamp - Settled debt rejected",
			policy: config.RepaymentPolicyClamp,
			debt: &domain.Debt{
				ID:           1,
				BorrowerID:   7,
				Amount:       decimal.NewFromInt(1000),
				AmountRepaid: decimal.NewFromInt(1000),
				Status:       domain.DebtStatusPaid,
			},
			amount:        decimal.NewFromInt(10),
			setupMocks:    func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {},
			expectedError: customError.ErrDebtAlreadySettled,
		},
		{
			name:   "Legacy - Overshoot recorded in full",
			policy: config.RepaymentPolicyLegacy,
			debt:   openDebt(),
			amount: decimal.NewFromInt(700),
			setupMocks: func(repo *mocks.MockLedgerRepository, debt *domain.Debt) {
				repo.On("RecordRepayment", mock.Anything, debt, mock.MatchedBy(func(r *domain.Repayment) bool {
					return r.Amount.Equal(decimal.NewFromInt(700))
				}), mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.NewFromInt(1100))
				}), domain.DebtStatusPaid).Return(nil)
			},
			expectedStatus: domain.DebtStatusPaid,
			expectedAmount: decimal.NewFromInt(700),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockLedgerRepository{}
			repo.On("GetDebt", mock.Anything, int64(1)).Return(tt.debt, nil)
			tt.setupMocks(repo, tt.debt)

			service := newLedgerService(repo, tt.policy)

			repayment, err := service.Repay(context.Background(), 1, &domain.RepayRequest{
				Amount: tt.amount,
				Date:   "2024-02-01",
				Mode:   "UPI",
			})

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, repayment)
			} else {
				assert.NoError(t, err)
				assert.True(t, repayment.Amount.Equal(tt.expectedAmount))
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestRepayValidation(t *testing.T) {
	repo := &mocks.MockLedgerRepository{}
	service := newLedgerService(repo, config.RepaymentPolicyReject)

	_, err := service.Repay(context.Background(), 1, &domain.RepayRequest{
		Amount: decimal.Zero,
		Date:   "2024-02-01",
		Mode:   "UPI",
	})
	assert.ErrorIs(t, err, customError.ErrInvalidInput)

	_, err = service.Repay(context.Background(), 1, &domain.RepayRequest{
		Amount: decimal.NewFromInt(10),
		Date:   "bad-date",
		Mode:   "UPI",
	})
	assert.ErrorIs(t, err, customError.ErrInvalidInput)

	repo.On("GetDebt", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)
	_, err = service.Repay(context.Background(), 42, &domain.RepayRequest{
		Amount: decimal.NewFromInt(10),
		Date:   "2024-02-01",
		Mode:   "UPI",
	})
	assert.ErrorIs(t, err, customError.ErrDebtNotFound)
}

func TestMarkFullyPaid(t *testing.T) {
	t.Run("Settles remaining principal with cash repayment", func(t *testing.T) {
		debt := &domain.Debt{
			ID:           1,
			BorrowerID:   7,
			Amount:       decimal.NewFromInt(1000),
			AmountRepaid: decimal.NewFromInt(400),
			Status:       domain.DebtStatusPartial,
		}

		repo := &mocks.MockLedgerRepository{}
		repo.On("GetDebt", mock.Anything, int64(1)).Return(debt, nil)
		repo.On("RecordRepayment", mock.Anything, debt, mock.MatchedBy(func(r *domain.Repayment) bool {
			return r.Amount.Equal(decimal.NewFromInt(600)) && r.Mode == "Cash"
		}), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(1000))
		}), domain.DebtStatusPaid).Return(nil)

		service := newLedgerService(repo, config.RepaymentPolicyReject)

		result, err := service.MarkFullyPaid(context.Background(), 1, &domain.MarkPaidRequest{Date: "2024-02-01"})

		assert.NoError(t, err)
		assert.False(t, result.AlreadyPaid)
		assert.True(t, result.Repayment.Amount.Equal(decimal.NewFromInt(600)))
		repo.AssertExpectations(t)
	})

	t.Run("Already settled debt is a no-op", func(t *testing.T) {
		debt := &domain.Debt{
			ID:           1,
			BorrowerID:   7,
			Amount:       decimal.NewFromInt(1000),
			AmountRepaid: decimal.NewFromInt(1000),
			Status:       domain.DebtStatusPaid,
		}

		repo := &mocks.MockLedgerRepository{}
		repo.On("GetDebt", mock.Anything, int64(1)).Return(debt, nil)

		service := newLedgerService(repo, config.RepaymentPolicyReject)

		result, err := service.MarkFullyPaid(context.Background(), 1, &domain.MarkPaidRequest{Date: "2024-02-01"})

		assert.NoError(t, err)
		assert.True(t, result.AlreadyPaid)
		assert.Nil(t, result.Repayment)
		repo.AssertNotCalled(t, "RecordRepayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteDebt(t *testing.T) {
	t.Run("Passes the pre-delete debt to the store", func(t *testing.T) {
		debt := &domain.Debt{
			ID:           1,
			BorrowerID:   7,
			Amount:       decimal.NewFromInt(1000),
			AmountRepaid: decimal.NewFromInt(400),
			Status:       domain.DebtStatusPartial,
		}

		repo := &mocks.MockLedgerRepository{}
		repo.On("GetDebt", mock.Anything, int64(1)).Return(debt, nil)
		repo.On("DeleteDebt", mock.Anything, debt).Return(nil)

		service := newLedgerService(repo, config.RepaymentPolicyReject)

		assert.NoError(t, service.DeleteDebt(context.Background(), 1))
		repo.AssertExpectations(t)
	})

	t.Run("Unknown debt", func(t *testing.T) {
		repo := &mocks.MockLedgerRepository{}
		repo.On("GetDebt", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)

		service := newLedgerService(repo, config.RepaymentPolicyReject)

		assert.ErrorIs(t, service.DeleteDebt(context.Background(), 9), customError.ErrDebtNotFound)
	})
}

func TestDeleteBorrower(t *testing.T) {
	t.Run("Deletes after existence check", func(t *testing.T) {
		repo := &mocks.MockLedgerRepository{}
		repo.On("GetBorrower", mock.Anything, int64(7)).Return(&domain.Borrower{ID: 7, UserID: "user-1"}, nil)
		repo.On("DeleteBorrower", mock.Anything, int64(7)).Return(nil)

		service := newLedgerService(repo, config.RepaymentPolicyReject)

		assert.NoError(t, service.DeleteBorrower(context.Background(), 7))
		repo.AssertExpectations(t)
	})

	t.Run("Unknown borrower", func(t *testing.T) {
		repo := &mocks.MockLedgerRepository{}
		repo.On("GetBorrower", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)

		service := newLedgerService(repo, config.RepaymentPolicyReject)

		assert.ErrorIs(t, service.DeleteBorrower(context.Background(), 9), customError.ErrBorrowerNotFound)
	})
}

func TestGetLedger(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Annotates debts and collects risks", func(t *testing.T) {
		borrower := &domain.Borrower{
			ID:             7,
			UserID:         "user-1",
			Name:           "Ravi",
			CurrentBalance: decimal.NewFromInt(15000),
		}
		debts := []*domain.Debt{
			{
				ID:             1,
				BorrowerID:     7,
				Amount:         decimal.NewFromInt(1000),
				AmountRepaid:   decimal.Zero,
				Status:         domain.DebtStatusPending,
				Date:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				DueDate:        &dueDate,
				Reason:         "Medical",
				InterestRate:   decimal.NewFromInt(12),
				InterestPeriod: "Monthly",
			},
			{
				ID:           2,
				BorrowerID:   7,
				Amount:       decimal.NewFromInt(500),
				AmountRepaid: decimal.NewFromInt(500),
				Status:       domain.DebtStatusPaid,
				Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				DueDate:      &dueDate,
				Reason:       "Groceries",
			},
		}

		repo := &mocks.MockLedgerRepository{}
		repo.On("GetBorrower", mock.Anything, int64(7)).Return(borrower, nil)
		repo.On("ListDebtsByBorrower", mock.Anything, int64(7)).Return(debts, nil)
		repo.On("ListRepaymentsByBorrower", mock.Anything, int64(7)).Return([]*domain.RepaymentEntry{}, nil)

		service := newLedgerService(repo, config.RepaymentPolicyReject)
		service.Clock = func() time.Time { return now }

		ledger, err := service.GetLedger(context.Background(), 7)

		assert.NoError(t, err)
		assert.Len(t, ledger.Debts, 2)

		// 91 days at 12% monthly on 1000: 1000 * 12 * (91/30.44) / 100
		assert.True(t, ledger.Debts[0].AccruedInterest.GreaterThan(decimal.NewFromInt(350)))
		assert.True(t, ledger.Debts[0].IsOverdue)
		assert.True(t, ledger.Debts[0].TotalDue.Equal(decimal.NewFromInt(1000).Add(ledger.Debts[0].AccruedInterest)))

		// Settled debts accrue nothing and never flag overdue.
		assert.True(t, ledger.Debts[1].AccruedInterest.IsZero())
		assert.False(t, ledger.Debts[1].IsOverdue)

		assert.Contains(t, ledger.Risks, "Overdue: Medical")
		assert.Contains(t, ledger.Risks, "High Outstanding Balance")
		assert.True(t, ledger.TotalInterest.Equal(ledger.Debts[0].AccruedInterest))
	})

	t.Run("Duplicate risk reasons collapse", func(t *testing.T) {
		borrower := &domain.Borrower{ID: 7, UserID: "user-1", CurrentBalance: decimal.NewFromInt(100)}
		debts := []*domain.Debt{
			{ID: 1, BorrowerID: 7, Amount: decimal.NewFromInt(100), AmountRepaid: decimal.Zero, Status: domain.DebtStatusPending, DueDate: &dueDate, Reason: "Rent"},
			{ID: 2, BorrowerID: 7, Amount: decimal.NewFromInt(200), AmountRepaid: decimal.Zero, Status: domain.DebtStatusPending, DueDate: &dueDate, Reason: "Rent"},
		}

		repo := &mocks.MockLedgerRepository{}
		repo.On("GetBorrower", mock.Anything, int64(7)).Return(borrower, nil)
		repo.On("ListDebtsByBorrower", mock.Anything, int64(7)).Return(debts, nil)
		repo.On("ListRepaymentsByBorrower", mock.Anything, int64(7)).Return([]*domain.RepaymentEntry{}, nil)

		service := newLedgerService(repo, config.RepaymentPolicyReject)
		service.Clock = func() time.Time { return now }

		ledger, err := service.GetLedger(context.Background(), 7)

		assert.NoError(t, err)
		assert.Equal(t, []string{"Overdue: Rent"}, ledger.Risks)
	})
}

func TestGetDashboard(t *testing.T) {
	repo := &mocks.MockLedgerRepository{}
	stats := &domain.LedgerStats{
		TotalLent:   decimal.NewFromInt(5000),
		TotalRepaid: decimal.NewFromInt(2000),
		Outstanding: decimal.NewFromInt(3000),
	}
	top := []*domain.Borrower{{ID: 7, Name: "Ravi", CurrentBalance: decimal.NewFromInt(3000)}}

	repo.On("DashboardStats", mock.Anything, domain.UserID("user-1")).Return(stats, nil)
	repo.On("TopBorrowers", mock.Anything, domain.UserID("user-1"), 3).Return(top, nil)

	service := newLedgerService(repo, config.RepaymentPolicyReject)

	dashboard, err := service.GetDashboard(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.True(t, dashboard.Stats.Outstanding.Equal(decimal.NewFromInt(3000)))
	assert.Len(t, dashboard.TopBorrowers, 1)
	repo.AssertExpectations(t)
}

func TestDailySweep(t *testing.T) {
	repo := &mocks.MockLedgerRepository{}
	repo.On("CountOverdueDebts", mock.Anything, mock.Anything).Return(int64(4), nil)

	service := newLedgerService(repo, config.RepaymentPolicyReject)

	assert.NoError(t, service.DailySweep(context.Background()))
	repo.AssertExpectations(t)
}

func TestLendingSummary(t *testing.T) {
	repo := &mocks.MockLedgerRepository{}
	repo.On("ListUsers", mock.Anything).Return([]domain.UserID{"user-1", "user-2"}, nil)
	repo.On("DashboardStats", mock.Anything, domain.UserID("user-1")).Return(&domain.LedgerStats{}, nil)
	repo.On("DashboardStats", mock.Anything, domain.UserID("user-2")).Return(&domain.LedgerStats{}, nil)

	service := newLedgerService(repo, config.RepaymentPolicyReject)

	assert.NoError(t, service.LendingSummary(context.Background()))
	repo.AssertExpectations(t)
}
