package handlers

import (
	"net/http"

	"investhub/internal/config"
	"investhub/internal/db"
	"investhub/internal/middleware"
	"investhub/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg          config.Config
	txRunner     db.TxRunner
	users        UserStore
	wallets      WalletStore
	transactions TransactionStore
	deposits     DepositStore
	withdrawals  WithdrawalStore
	plans        PlanStore
	investments  InvestmentStore
	rewards      RewardStore
	rates        CommissionRateStore
	admin        AdminStore
	audit        AuditStore
	ledger       LedgerService
	service      InvestmentService
	batch        BatchRunner
	clock        TrustedClock
	hub          *websocket.Hub
}

func New(cfg config.Config, txRunner db.TxRunner, users UserStore, wallets WalletStore, transactions TransactionStore, deposits DepositStore, withdrawals WithdrawalStore, plans PlanStore, investments InvestmentStore, rewards RewardStore, rates CommissionRateStore, admin AdminStore, audit AuditStore, ledger LedgerService, service InvestmentService, batch BatchRunner, clock TrustedClock, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:          cfg,
		txRunner:     txRunner,
		users:        users,
		wallets:      wallets,
		transactions: transactions,
		deposits:     deposits,
		withdrawals:  withdrawals,
		plans:        plans,
		investments:  investments,
		rewards:      rewards,
		rates:        rates,
		admin:        admin,
		audit:        audit,
		ledger:       ledger,
		service:      service,
		batch:        batch,
		clock:        clock,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	authd := middleware.Auth(h.cfg.JWTSecret)
	router.With(authd).Get("/wallet/balance", h.GetBalance)
	router.With(authd).Get("/wallet/transactions", h.ListTransactions)
	router.With(authd).Post("/deposits", h.CreateDeposit)
	router.With(authd).Get("/deposits", h.ListDeposits)
	router.With(authd).Post("/withdrawals", h.RequestWithdrawal)
	router.With(authd).Get("/withdrawals", h.ListWithdrawals)
	router.With(authd).Get("/plans", h.ListPlans)
	router.With(authd).Get("/investments", h.ListInvestments)
	router.With(authd).Get("/investments/stats", h.InvestmentStats)
	router.With(authd).Get("/referrals", h.ListReferrals)
	router.With(authd).Get("/referrals/rewards", h.ListReferralRewards)
	router.Get("/ws/balances", h.WSBalances)

	router.Route("/admin", func(r chi.Router) {
		r.Use(authd)
		r.With(middleware.RequireReviewer(h.admin, "CanReviewDeposits")).Get("/deposits/pending", h.AdminPendingDeposits)
		r.With(middleware.RequireReviewer(h.admin, "CanReviewDeposits")).Post("/deposits/{id}/approve", h.AdminApproveDeposit)
		r.With(middleware.RequireReviewer(h.admin, "CanReviewDeposits")).Post("/deposits/{id}/reject", h.AdminRejectDeposit)
		r.With(middleware.RequireReviewer(h.admin, "CanReviewWithdrawals")).Get("/withdrawals/pending", h.AdminPendingWithdrawals)
		r.With(middleware.RequireReviewer(h.admin, "CanReviewWithdrawals")).Post("/withdrawals/{id}/approve", h.AdminApproveWithdrawal)
		r.With(middleware.RequireReviewer(h.admin, "CanReviewWithdrawals")).Post("/withdrawals/{id}/reject", h.AdminRejectWithdrawal)
		r.With(middleware.RequireReviewer(h.admin, "")).Post("/investments/{id}/terminate", h.AdminTerminateInvestment)
		r.With(middleware.RequireReviewer(h.admin, "")).Post("/plans", h.AdminCreatePlan)
		r.With(middleware.RequireReviewer(h.admin, "")).Put("/plans/{id}", h.AdminUpdatePlan)
		r.With(middleware.RequireReviewer(h.admin, "")).Get("/commission-rates", h.AdminListRates)
		r.With(middleware.RequireReviewer(h.admin, "")).Post("/commission-rates", h.AdminUpsertRate)
		r.With(middleware.RequireReviewer(h.admin, "")).Post("/roles/grant", h.AdminGrantRole)
		r.With(middleware.RequireReviewer(h.admin, "")).Post("/batch/run", h.AdminRunBatch)
		r.With(middleware.RequireReviewer(h.admin, "")).Get("/audit", h.AdminListAudit)
		r.With(middleware.RequireReviewer(h.admin, "")).Get("/reconcile", h.AdminReconcile)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"clock_degraded": h.clock.Degraded(),
		})
	})
	return router
}
