package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/finsight/ledger-engine/internal/domain"
	"github.com/finsight/ledger-engine/internal/service"
	"github.com/finsight/ledger-engine/pkg/response"
)

type LedgerHandler struct {
	service   service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(service service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Lend handles POST /debts
func (h *LedgerHandler) Lend(w http.ResponseWriter, r *http.Request) {
	var request domain.LendRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	debt, err := h.service.Lend(r.Context(), userFrom(r), &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, debt)
}

// Repay handles POST /debts/{debtId}/repayments
func (h *LedgerHandler) Repay(w http.ResponseWriter, r *http.Request) {
	debtID, err := pathID(r, "debtId")
	if err != nil {
		response.BadRequest(w, "invalid debt id", err)
		return
	}

	var request domain.RepayRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	repayment, err := h.service.Repay(r.Context(), debtID, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, repayment)
}

// MarkFullyPaid handles POST /debts/{debtId}/settle
func (h *LedgerHandler) MarkFullyPaid(w http.ResponseWriter, r *http.Request) {
	debtID, err := pathID(r, "debtId")
	if err != nil {
		response.BadRequest(w, "invalid debt id", err)
		return
	}

	var request domain.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.MarkFullyPaid(r.Context(), debtID, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, result)
}

// DeleteDebt handles DELETE /debts/{debtId}
func (h *LedgerHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	debtID, err := pathID(r, "debtId")
	if err != nil {
		response.BadRequest(w, "invalid debt id", err)
		return
	}

	if err := h.service.DeleteDebt(r.Context(), debtID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "debt deleted"})
}

// DeleteBorrower handles DELETE /borrowers/{borrowerId}
func (h *LedgerHandler) DeleteBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := pathID(r, "borrowerId")
	if err != nil {
		response.BadRequest(w, "invalid borrower id", err)
		return
	}

	if err := h.service.DeleteBorrower(r.Context(), borrowerID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "borrower deleted"})
}

// ListBorrowers handles GET /borrowers
func (h *LedgerHandler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	borrowers, err := h.service.ListBorrowers(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, borrowers)
}

// GetLedger handles GET /borrowers/{borrowerId}/ledger
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := pathID(r, "borrowerId")
	if err != nil {
		response.BadRequest(w, "invalid borrower id", err)
		return
	}

	ledger, err := h.service.GetLedger(r.Context(), borrowerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, ledger)
}

// GetDashboard handles GET /debts/dashboard
func (h *LedgerHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, dashboard)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
