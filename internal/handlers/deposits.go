package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"investhub/internal/middleware"
	"investhub/internal/services"
)

type createDepositRequest struct {
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	EvidenceRef   string `json:"evidence_ref"`
}

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		respondError(w, http.StatusBadRequest, "payment_method is required")
		return
	}
	deposit, err := h.service.CreateDeposit(r.Context(), services.CreateDepositRequest{
		UserID:        userID,
		AmountMinor:   amountMinor,
		Currency:      h.cfg.DefaultCurrency,
		PaymentMethod: req.PaymentMethod,
		EvidenceRef:   req.EvidenceRef,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create deposit")
		return
	}
	respondJSON(w, http.StatusCreated, deposit)
}

func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := paginationParams(r)
	deposits, err := h.deposits.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list deposits")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"deposits": deposits,
		"limit":    limit,
		"offset":   offset,
	})
}
