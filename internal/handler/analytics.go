package handler

import (
	"net/http"

	"github.com/finsight/ledger-engine/internal/service"
	"github.com/finsight/ledger-engine/pkg/response"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
}

func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Predict handles GET /analytics/prediction
func (h *AnalyticsHandler) Predict(w http.ResponseWriter, r *http.Request) {
	prediction, err := h.service.PredictNextMonthSpend(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, prediction)
}

// Insights handles GET /analytics/insights
func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.GenerateInsights(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, insights)
}

// BudgetStatus handles GET /budgets/status
func (h *AnalyticsHandler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.service.BudgetStatus(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, budgets)
}

// BudgetHistory handles GET /budgets/history
func (h *AnalyticsHandler) BudgetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.BudgetHistory(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, history)
}
