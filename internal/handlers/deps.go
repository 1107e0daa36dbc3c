package handlers

import (
	"context"
	"time"

	"investhub/internal/models"
	"investhub/internal/services"
	"investhub/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, user models.User) error
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByReferralCode(ctx context.Context, code string) (models.User, error)
	ListDirectReferrals(ctx context.Context, referrerID string) ([]models.User, error)
}

type WalletStore interface {
	Reconcile(ctx context.Context) ([]store.WalletReconciliation, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error)
	SumCompletedByUser(ctx context.Context, userID string) (int64, error)
}

type DepositStore interface {
	GetByID(ctx context.Context, depositID string) (models.Deposit, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Deposit, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Deposit, error)
}

type WithdrawalStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Withdrawal, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error)
}

type PlanStore interface {
	Create(ctx context.Context, tx store.Execer, plan models.InvestmentPlan) error
	Update(ctx context.Context, tx store.Execer, plan models.InvestmentPlan) error
	GetByID(ctx context.Context, planID string) (models.InvestmentPlan, error)
	ListActive(ctx context.Context) ([]models.InvestmentPlan, error)
}

type InvestmentStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Investment, error)
	StatsByUser(ctx context.Context, userID string) (store.InvestmentStats, error)
}

type RewardStore interface {
	ListByReferrer(ctx context.Context, referrerID string, limit, offset int) ([]models.AffiliateReward, error)
}

type CommissionRateStore interface {
	Upsert(ctx context.Context, tx store.Execer, rate models.CommissionRate) error
	ListAll(ctx context.Context) ([]models.CommissionRate, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
	HasAnyAdmin(ctx context.Context, q store.Getter) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type LedgerService interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
}

type InvestmentService interface {
	CreateDeposit(ctx context.Context, req services.CreateDepositRequest) (models.Deposit, error)
	ApproveDeposit(ctx context.Context, req services.ApproveDepositRequest) (models.Investment, error)
	RejectDeposit(ctx context.Context, depositID, reviewerID, notes string) error
	RequestWithdrawal(ctx context.Context, req services.RequestWithdrawalRequest) (models.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID, reviewerID, notes string) error
	RejectWithdrawal(ctx context.Context, withdrawalID, reviewerID, notes string) error
	Terminate(ctx context.Context, investmentID, reviewerID, notes string) error
}

type BatchRunner interface {
	RunCycle(ctx context.Context) error
}

type TrustedClock interface {
	Now() time.Time
	Degraded() bool
}
