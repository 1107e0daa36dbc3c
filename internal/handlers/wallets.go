package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"investhub/internal/auth"
	"investhub/internal/middleware"
	"investhub/internal/money"
	"investhub/internal/websocket"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	balance, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No wallet yet means no money has ever moved.
			respondJSON(w, http.StatusOK, map[string]string{
				"balance":  money.FormatMinor(0),
				"currency": h.cfg.DefaultCurrency,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to read balance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"balance":  money.FormatMinor(balance),
		"currency": h.cfg.DefaultCurrency,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := paginationParams(r)
	source := r.URL.Query().Get("source")
	transactions, err := h.transactions.ListByUser(r.Context(), userID, source, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}

// WSBalances upgrades to a websocket for balance pushes. The token
// rides in the query string because browsers cannot set headers on
// websocket dials.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
