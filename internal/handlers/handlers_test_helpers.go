package handlers

import (
	"context"
	"time"

	"investhub/internal/config"
	"investhub/internal/db"
	"investhub/internal/models"
	"investhub/internal/services"
	"investhub/internal/store"
	"investhub/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn            func(ctx context.Context, tx store.Execer, user models.User) error
	getByIDFn           func(ctx context.Context, userID string) (models.User, error)
	getByEmailFn        func(ctx context.Context, email string) (models.User, error)
	getByReferralCodeFn func(ctx context.Context, code string) (models.User, error)
	listReferralsFn     func(ctx context.Context, referrerID string) ([]models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, user models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, user)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	if s.getByReferralCodeFn == nil {
		return models.User{}, nil
	}
	return s.getByReferralCodeFn(ctx, code)
}

func (s stubUserStore) ListDirectReferrals(ctx context.Context, referrerID string) ([]models.User, error) {
	if s.listReferralsFn == nil {
		return nil, nil
	}
	return s.listReferralsFn(ctx, referrerID)
}

type stubWalletStore struct {
	reconcileFn func(ctx context.Context) ([]store.WalletReconciliation, error)
}

func (s stubWalletStore) Reconcile(ctx context.Context) ([]store.WalletReconciliation, error) {
	if s.reconcileFn == nil {
		return nil, nil
	}
	return s.reconcileFn(ctx)
}

type stubTransactionStore struct {
	listFn func(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error)
	sumFn  func(ctx context.Context, userID string) (int64, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, source, limit, offset)
}

func (s stubTransactionStore) SumCompletedByUser(ctx context.Context, userID string) (int64, error) {
	if s.sumFn == nil {
		return 0, nil
	}
	return s.sumFn(ctx, userID)
}

type stubDepositStore struct {
	getByIDFn      func(ctx context.Context, depositID string) (models.Deposit, error)
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]models.Deposit, error)
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.Deposit, error)
}

func (s stubDepositStore) GetByID(ctx context.Context, depositID string) (models.Deposit, error) {
	if s.getByIDFn == nil {
		return models.Deposit{}, nil
	}
	return s.getByIDFn(ctx, depositID)
}

func (s stubDepositStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Deposit, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubDepositStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Deposit, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubWithdrawalStore struct {
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]models.Withdrawal, error)
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error)
}

func (s stubWithdrawalStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Withdrawal, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubWithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubPlanStore struct {
	createFn     func(ctx context.Context, tx store.Execer, plan models.InvestmentPlan) error
	updateFn     func(ctx context.Context, tx store.Execer, plan models.InvestmentPlan) error
	getByIDFn    func(ctx context.Context, planID string) (models.InvestmentPlan, error)
	listActiveFn func(ctx context.Context) ([]models.InvestmentPlan, error)
}

func (s stubPlanStore) Create(ctx context.Context, tx store.Execer, plan models.InvestmentPlan) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, plan)
}

func (s stubPlanStore) Update(ctx context.Context, tx store.Execer, plan models.InvestmentPlan) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, plan)
}

func (s stubPlanStore) GetByID(ctx context.Context, planID string) (models.InvestmentPlan, error) {
	if s.getByIDFn == nil {
		return models.InvestmentPlan{}, nil
	}
	return s.getByIDFn(ctx, planID)
}

func (s stubPlanStore) ListActive(ctx context.Context) ([]models.InvestmentPlan, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx)
}

type stubInvestmentStore struct {
	listByUserFn func(ctx context.Context, userID string, limit, offset int) ([]models.Investment, error)
	statsFn      func(ctx context.Context, userID string) (store.InvestmentStats, error)
}

func (s stubInvestmentStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Investment, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubInvestmentStore) StatsByUser(ctx context.Context, userID string) (store.InvestmentStats, error) {
	if s.statsFn == nil {
		return store.InvestmentStats{}, nil
	}
	return s.statsFn(ctx, userID)
}

type stubRewardStore struct {
	listFn func(ctx context.Context, referrerID string, limit, offset int) ([]models.AffiliateReward, error)
}

func (s stubRewardStore) ListByReferrer(ctx context.Context, referrerID string, limit, offset int) ([]models.AffiliateReward, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, referrerID, limit, offset)
}

type stubRateStore struct {
	upsertFn  func(ctx context.Context, tx store.Execer, rate models.CommissionRate) error
	listAllFn func(ctx context.Context) ([]models.CommissionRate, error)
}

func (s stubRateStore) Upsert(ctx context.Context, tx store.Execer, rate models.CommissionRate) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, rate)
}

func (s stubRateStore) ListAll(ctx context.Context) ([]models.CommissionRate, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, adminUserID, role string) error
	hasAnyAdminFn func(ctx context.Context, q store.Getter) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context, q store.Getter) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx, q)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubLedger struct {
	getBalanceFn func(ctx context.Context, userID string) (int64, error)
}

func (s stubLedger) GetBalance(ctx context.Context, userID string) (int64, error) {
	if s.getBalanceFn == nil {
		return 0, nil
	}
	return s.getBalanceFn(ctx, userID)
}

type stubService struct {
	createDepositFn     func(ctx context.Context, req services.CreateDepositRequest) (models.Deposit, error)
	approveDepositFn    func(ctx context.Context, req services.ApproveDepositRequest) (models.Investment, error)
	rejectDepositFn     func(ctx context.Context, depositID, reviewerID, notes string) error
	requestWithdrawalFn func(ctx context.Context, req services.RequestWithdrawalRequest) (models.Withdrawal, error)
	approveWithdrawalFn func(ctx context.Context, withdrawalID, reviewerID, notes string) error
	rejectWithdrawalFn  func(ctx context.Context, withdrawalID, reviewerID, notes string) error
	terminateFn         func(ctx context.Context, investmentID, reviewerID, notes string) error
}

func (s stubService) CreateDeposit(ctx context.Context, req services.CreateDepositRequest) (models.Deposit, error) {
	if s.createDepositFn == nil {
		return models.Deposit{}, nil
	}
	return s.createDepositFn(ctx, req)
}

func (s stubService) ApproveDeposit(ctx context.Context, req services.ApproveDepositRequest) (models.Investment, error) {
	if s.approveDepositFn == nil {
		return models.Investment{}, nil
	}
	return s.approveDepositFn(ctx, req)
}

func (s stubService) RejectDeposit(ctx context.Context, depositID, reviewerID, notes string) error {
	if s.rejectDepositFn == nil {
		return nil
	}
	return s.rejectDepositFn(ctx, depositID, reviewerID, notes)
}

func (s stubService) RequestWithdrawal(ctx context.Context, req services.RequestWithdrawalRequest) (models.Withdrawal, error) {
	if s.requestWithdrawalFn == nil {
		return models.Withdrawal{}, nil
	}
	return s.requestWithdrawalFn(ctx, req)
}

func (s stubService) ApproveWithdrawal(ctx context.Context, withdrawalID, reviewerID, notes string) error {
	if s.approveWithdrawalFn == nil {
		return nil
	}
	return s.approveWithdrawalFn(ctx, withdrawalID, reviewerID, notes)
}

func (s stubService) RejectWithdrawal(ctx context.Context, withdrawalID, reviewerID, notes string) error {
	if s.rejectWithdrawalFn == nil {
		return nil
	}
	return s.rejectWithdrawalFn(ctx, withdrawalID, reviewerID, notes)
}

func (s stubService) Terminate(ctx context.Context, investmentID, reviewerID, notes string) error {
	if s.terminateFn == nil {
		return nil
	}
	return s.terminateFn(ctx, investmentID, reviewerID, notes)
}

type stubBatchRunner struct {
	runFn func(ctx context.Context) error
}

func (s stubBatchRunner) RunCycle(ctx context.Context) error {
	if s.runFn == nil {
		return nil
	}
	return s.runFn(ctx)
}

type stubClock struct {
	now      time.Time
	degraded bool
}

func (s stubClock) Now() time.Time {
	if s.now.IsZero() {
		return time.Now()
	}
	return s.now
}

func (s stubClock) Degraded() bool {
	return s.degraded
}

func newTestHandler(txRunner db.TxRunner, users UserStore, wallets WalletStore, transactions TransactionStore, deposits DepositStore, withdrawals WithdrawalStore, plans PlanStore, investments InvestmentStore, rewards RewardStore, rates CommissionRateStore, admin AdminStore, audit AuditStore, ledger LedgerService, service InvestmentService, batch BatchRunner, clock TrustedClock) *Handler {
	cfg := config.Config{
		JWTSecret:       "secret",
		TokenTTL:        time.Minute,
		AllowedOrigins:  "*",
		DefaultCurrency: "USD",
	}
	return New(cfg, txRunner, users, wallets, transactions, deposits, withdrawals, plans, investments, rewards, rates, admin, audit, ledger, service, batch, clock, websocket.NewHub())
}
