package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"investhub/internal/middleware"
	"investhub/internal/models"
	"investhub/internal/services"
	"investhub/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) AdminPendingDeposits(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)
	deposits, err := h.deposits.ListByStatus(r.Context(), models.ReviewStatusPending, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list deposits")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deposits": deposits})
}

type approveDepositRequest struct {
	PlanID string `json:"plan_id"`
	Notes  string `json:"notes"`
}

func (h *Handler) AdminApproveDeposit(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req approveDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "plan_id is required")
		return
	}
	depositID := chi.URLParam(r, "id")
	investment, err := h.service.ApproveDeposit(r.Context(), services.ApproveDepositRequest{
		DepositID:  depositID,
		PlanID:     req.PlanID,
		ReviewerID: reviewerID,
		Notes:      req.Notes,
		Now:        h.clock.Now(),
	})
	if err != nil {
		h.respondReviewError(w, err)
		return
	}
	h.notifyReview(investment.UserID, "deposit", depositID, models.ReviewStatusApproved)
	respondJSON(w, http.StatusOK, investment)
}

type reviewNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) AdminRejectDeposit(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	depositID := chi.URLParam(r, "id")
	if err := h.service.RejectDeposit(r.Context(), depositID, reviewerID, req.Notes); err != nil {
		h.respondReviewError(w, err)
		return
	}
	if deposit, err := h.deposits.GetByID(r.Context(), depositID); err == nil {
		h.notifyReview(deposit.UserID, "deposit", depositID, models.ReviewStatusRejected)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.ReviewStatusRejected})
}

func (h *Handler) AdminPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)
	withdrawals, err := h.withdrawals.ListByStatus(r.Context(), models.ReviewStatusPending, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list withdrawals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"withdrawals": withdrawals})
}

func (h *Handler) AdminApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	withdrawalID := chi.URLParam(r, "id")
	if err := h.service.ApproveWithdrawal(r.Context(), withdrawalID, reviewerID, req.Notes); err != nil {
		h.respondReviewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.ReviewStatusApproved})
}

func (h *Handler) AdminRejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	withdrawalID := chi.URLParam(r, "id")
	if err := h.service.RejectWithdrawal(r.Context(), withdrawalID, reviewerID, req.Notes); err != nil {
		h.respondReviewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.ReviewStatusRejected})
}

func (h *Handler) AdminTerminateInvestment(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.service.Terminate(r.Context(), chi.URLParam(r, "id"), reviewerID, req.Notes); err != nil {
		h.respondReviewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.InvestmentTerminated})
}

type planRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Kind         string `json:"kind"`
	MinAmount    string `json:"min_amount"`
	MaxAmount    string `json:"max_amount"`
	DurationDays int    `json:"duration_days"`
	ReturnRate   string `json:"return_rate"`
	DailyRate    string `json:"daily_rate"`
	MinLevel     int    `json:"min_level"`
	IsActive     bool   `json:"is_active"`
	IsFeatured   bool   `json:"is_featured"`
}

func (h *Handler) AdminCreatePlan(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	plan, errMsg := h.planFromRequest(r, uuid.NewString())
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.plans.Create(r.Context(), tx, plan); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"name": plan.Name})
		return h.audit.Log(r.Context(), tx, reviewerID, "create_plan", "plan", plan.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create plan")
		return
	}
	respondJSON(w, http.StatusCreated, plan)
}

func (h *Handler) AdminUpdatePlan(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	planID := chi.URLParam(r, "id")
	plan, errMsg := h.planFromRequest(r, planID)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.plans.Update(r.Context(), tx, plan); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"name": plan.Name})
		return h.audit.Log(r.Context(), tx, reviewerID, "update_plan", "plan", plan.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update plan")
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (h *Handler) planFromRequest(r *http.Request, planID string) (models.InvestmentPlan, string) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.InvestmentPlan{}, "invalid payload"
	}
	if req.Kind != models.PlanKindFixed && req.Kind != models.PlanKindYield {
		return models.InvestmentPlan{}, "kind must be fixed or yield"
	}
	if req.DurationDays <= 0 {
		return models.InvestmentPlan{}, "duration_days must be positive"
	}
	minAmount, err := parseAmountMinor(req.MinAmount)
	if err != nil {
		return models.InvestmentPlan{}, "invalid min_amount"
	}
	var maxAmount int64
	if req.MaxAmount != "" {
		maxAmount, err = parseAmountMinor(req.MaxAmount)
		if err != nil || maxAmount < minAmount {
			return models.InvestmentPlan{}, "invalid max_amount"
		}
	}
	if req.MinLevel < 1 || req.MinLevel > 4 {
		return models.InvestmentPlan{}, "min_level must be between 1 and 4"
	}
	return models.InvestmentPlan{
		ID:           planID,
		Name:         req.Name,
		Description:  req.Description,
		Kind:         req.Kind,
		MinAmount:    minAmount,
		MaxAmount:    maxAmount,
		DurationDays: req.DurationDays,
		ReturnRate:   req.ReturnRate,
		DailyRate:    req.DailyRate,
		MinLevel:     req.MinLevel,
		IsActive:     req.IsActive,
		IsFeatured:   req.IsFeatured,
	}, ""
}

func (h *Handler) AdminListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list rates")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

type rateRequest struct {
	ReferrerLevel int    `json:"referrer_level"`
	ReferralLevel int    `json:"referral_level"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Rate          string `json:"rate"`
}

func (h *Handler) AdminUpsertRate(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ReferrerLevel < 1 || req.ReferrerLevel > 4 || req.ReferralLevel < 1 || req.ReferralLevel > 4 {
		respondError(w, http.StatusBadRequest, "levels must be between 1 and 4")
		return
	}
	if req.Kind != models.RateKindFixed && req.Kind != models.RateKindPercent {
		respondError(w, http.StatusBadRequest, "kind must be fixed or percent")
		return
	}
	rate := models.CommissionRate{
		ReferrerLevel: req.ReferrerLevel,
		ReferralLevel: req.ReferralLevel,
		Kind:          req.Kind,
		Rate:          req.Rate,
	}
	if req.Kind == models.RateKindFixed {
		amount, err := parseAmountMinor(req.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		rate.AmountMinor = amount
		rate.Rate = "0"
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.rates.Upsert(r.Context(), tx, rate); err != nil {
			return err
		}
		data, _ := json.Marshal(rate)
		return h.audit.Log(r.Context(), tx, reviewerID, "upsert_commission_rate", "commission_rate", "", string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to store rate")
		return
	}
	respondJSON(w, http.StatusOK, rate)
}

type grantRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *Handler) AdminGrantRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "user_id and role are required")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		isAdmin, _, err := h.admin.IsAdmin(r.Context(), req.UserID)
		if err != nil {
			return err
		}
		if !isAdmin {
			if err := h.admin.CreateAdmin(r.Context(), tx, req.UserID, false, &actorID); err != nil {
				return err
			}
		}
		if err := h.admin.GrantRole(r.Context(), tx, req.UserID, req.Role); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"role": req.Role})
		return h.audit.Log(r.Context(), tx, actorID, "grant_role", "admin", req.UserID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

// AdminRunBatch triggers the daily cycle out of schedule. The per-day
// run-lock still applies, so this cannot double-pay a day that already
// ran.
func (h *Handler) AdminRunBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.batch.RunCycle(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "batch cycle failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

func (h *Handler) AdminListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"audit": logs})
}

func (h *Handler) AdminReconcile(w http.ResponseWriter, r *http.Request) {
	// With user_id the check narrows to one account: the stored wallet
	// balance against the balance recomputed from the transaction log.
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		stored, err := h.ledger.GetBalance(r.Context(), userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusInternalServerError, "unable to reconcile")
			return
		}
		calculated, err := h.transactions.SumCompletedByUser(r.Context(), userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to reconcile")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user_id":            userID,
			"stored_balance":     stored,
			"calculated_balance": calculated,
			"difference":         stored - calculated,
		})
		return
	}

	rows, err := h.wallets.Reconcile(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile")
		return
	}
	var mismatches int
	for _, row := range rows {
		if row.Difference != 0 {
			mismatches++
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"wallets":    rows,
		"mismatches": mismatches,
	})
}

func (h *Handler) respondReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, services.ErrAlreadyProcessed):
		respondError(w, http.StatusConflict, "already_processed")
	case errors.Is(err, services.ErrPlanInactive):
		respondError(w, http.StatusBadRequest, "plan_inactive")
	case errors.Is(err, services.ErrAmountOutOfRange):
		respondError(w, http.StatusBadRequest, "amount_out_of_plan_bounds")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount")
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}

func (h *Handler) notifyReview(userID, entity, entityID, status string) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastReview(userID, websocket.ReviewUpdate{
		Entity:   entity,
		EntityID: entityID,
		Status:   status,
	})
}
