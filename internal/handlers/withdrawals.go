package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"investhub/internal/middleware"
	"investhub/internal/services"
)

type requestWithdrawalRequest struct {
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req requestWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		respondError(w, http.StatusBadRequest, "destination is required")
		return
	}
	withdrawal, err := h.service.RequestWithdrawal(r.Context(), services.RequestWithdrawalRequest{
		UserID:      userID,
		AmountMinor: amountMinor,
		Currency:    h.cfg.DefaultCurrency,
		Destination: req.Destination,
	})
	if err != nil {
		if errors.Is(err, services.ErrInsufficientFunds) {
			respondError(w, http.StatusBadRequest, "insufficient_funds")
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create withdrawal")
		return
	}
	respondJSON(w, http.StatusCreated, withdrawal)
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := paginationParams(r)
	withdrawals, err := h.withdrawals.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list withdrawals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"withdrawals": withdrawals,
		"limit":       limit,
		"offset":      offset,
	})
}
