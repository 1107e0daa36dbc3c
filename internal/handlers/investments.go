package handlers

import (
	"net/http"

	"investhub/internal/middleware"
	"investhub/internal/money"
)

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list plans")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := paginationParams(r)
	investments, err := h.investments.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list investments")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"investments": investments,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) InvestmentStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats, err := h.investments.StatsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_invested":  money.FormatMinor(stats.TotalInvested),
		"total_profit":    money.FormatMinor(stats.TotalProfit),
		"active_count":    stats.ActiveCount,
		"completed_count": stats.CompletedCount,
	})
}
