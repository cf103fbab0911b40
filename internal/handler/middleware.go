package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/finsight/ledger-engine/internal/domain"
	customError "github.com/finsight/ledger-engine/pkg/errors"
	"github.com/finsight/ledger-engine/pkg/response"
)

const userIDHeader = "X-User-ID"

type contextKey string

const userContextKey contextKey = "user"

// UserMiddleware is the collaborator boundary for identity: the raw header
// value is parsed into a domain.UserID exactly once, here.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := domain.ParseUserID(r.Header.Get(userIDHeader))
		if err != nil {
			response.Unauthorized(w, "missing or empty "+userIDHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

func userFrom(r *http.Request) domain.UserID {
	user, _ := r.Context().Value(userContextKey).(domain.UserID)
	return user
}

// newValidator builds a validator that understands shopspring decimals.
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	})

	_ = v.RegisterValidation("dgte0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && !d.IsNegative()
	})

	return v
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customError.ErrBorrowerNotFound),
		errors.Is(err, customError.ErrDebtNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, customError.ErrDebtAlreadySettled):
		response.Conflict(w, "debt is already settled", err)
	case errors.Is(err, customError.ErrInvalidInput),
		errors.Is(err, customError.ErrRepaymentExceedsDebt):
		response.BadRequest(w, "invalid request", err)
	default:
		response.InternalServerError(w, "operation failed", err)
	}
}
