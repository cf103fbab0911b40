package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrBorrowerNotFound     = errors.New("borrower not found")
	ErrDebtNotFound         = errors.New("debt not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDebtAlreadySettled   = errors.New("debt is already settled")
	ErrRepaymentExceedsDebt = errors.New("repayment exceeds outstanding principal")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeBorrowerNotFound     = "BORROWER_NOT_FOUND"
	ErrCodeDebtNotFound         = "DEBT_NOT_FOUND"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeDebtAlreadySettled   = "DEBT_ALREADY_SETTLED"
	ErrCodeRepaymentExceedsDebt = "REPAYMENT_EXCEEDS_DEBT"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapBorrowerNotFound(borrowerID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerNotFound,
		fmt.Sprintf("Borrower with ID %d not found", borrowerID),
		ErrBorrowerNotFound,
	)
}

func WrapDebtNotFound(debtID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtNotFound,
		fmt.Sprintf("Debt with ID %d not found", debtID),
		ErrDebtNotFound,
	)
}

func WrapInvalidInput(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidInput, message, ErrInvalidInput)
}

func WrapDebtAlreadySettled(debtID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtAlreadySettled,
		fmt.Sprintf("Debt with ID %d is already fully repaid", debtID),
		ErrDebtAlreadySettled,
	)
}

func WrapRepaymentExceedsDebt(debtID int64, outstanding string) *BusinessError {
	return NewBusinessError(
		ErrCodeRepaymentExceedsDebt,
		fmt.Sprintf("Repayment on debt %d exceeds the outstanding principal of %s", debtID, outstanding),
		ErrRepaymentExceedsDebt,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
