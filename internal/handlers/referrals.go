package handlers

import (
	"net/http"

	"investhub/internal/middleware"
	"investhub/internal/money"
)

type referralView struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
	JoinedAt string `json:"joined_at"`
}

func (h *Handler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	referrals, err := h.users.ListDirectReferrals(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list referrals")
		return
	}
	views := make([]referralView, 0, len(referrals))
	for _, referral := range referrals {
		views = append(views, referralView{
			Username: referral.Username,
			Level:    referral.Level,
			JoinedAt: referral.CreatedAt.Format("2006-01-02"),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"referral_code":      user.ReferralCode,
		"affiliate_earnings": money.FormatMinor(user.AffiliateEarnings),
		"referrals":          views,
	})
}

func (h *Handler) ListReferralRewards(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := paginationParams(r)
	rewards, err := h.rewards.ListByReferrer(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list rewards")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"rewards": rewards,
		"limit":   limit,
		"offset":  offset,
	})
}
