package services

import (
	"context"
	"database/sql"
	"time"

	"investhub/internal/models"
	"investhub/internal/store"
	"investhub/internal/websocket"

	"github.com/jmoiron/sqlx"
)

// fakeTxRunner invokes the closure with a nil transaction. The stores
// under it are stubs that never touch the handle, so service logic can
// be exercised without a database.
type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubWallets struct {
	wallet      models.Wallet
	getErr      error
	ensured     int
	newBalances []int64
}

func (s *stubWallets) EnsureExists(ctx context.Context, tx store.Execer, id, userID, currency string) error {
	s.ensured++
	return nil
}

func (s *stubWallets) GetByUser(ctx context.Context, userID, currency string) (models.Wallet, error) {
	return s.wallet, s.getErr
}

func (s *stubWallets) GetForUpdate(ctx context.Context, tx store.Getter, userID, currency string) (models.Wallet, error) {
	return s.wallet, s.getErr
}

func (s *stubWallets) UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
	s.newBalances = append(s.newBalances, balance)
	return nil
}

type stubTransactions struct {
	inputs []store.TransactionInput
	err    error
}

func (s *stubTransactions) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.err != nil {
		return s.err
	}
	s.inputs = append(s.inputs, input)
	return nil
}

type stubHub struct {
	updates []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(userID string, update websocket.BalanceUpdate) {
	s.updates = append(s.updates, update)
}

// recordingLedger satisfies the Ledger interface for services composed
// on top of the ledger. Amounts are tracked per call site.
type recordingLedger struct {
	credits   []CreditRequest
	debits    []DebitRequest
	failed    []int64
	creditErr error
	debitErr  error
}

func (l *recordingLedger) CreditInTx(ctx context.Context, tx *sqlx.Tx, req CreditRequest) (models.Transaction, int64, error) {
	if l.creditErr != nil {
		return models.Transaction{}, 0, l.creditErr
	}
	l.credits = append(l.credits, req)
	return models.Transaction{ID: "txn", UserID: req.UserID, Amount: req.AmountMinor}, 0, nil
}

func (l *recordingLedger) DebitInTx(ctx context.Context, tx *sqlx.Tx, req DebitRequest) (models.Transaction, int64, error) {
	if l.debitErr != nil {
		return models.Transaction{}, 0, l.debitErr
	}
	l.debits = append(l.debits, req)
	return models.Transaction{ID: "txn", UserID: req.UserID, Amount: req.AmountMinor}, 0, nil
}

func (l *recordingLedger) RecordFailedInTx(ctx context.Context, tx *sqlx.Tx, userID string, amountMinor int64, source, description, reason string) (models.Transaction, error) {
	l.failed = append(l.failed, amountMinor)
	return models.Transaction{ID: "txn", UserID: userID, Amount: amountMinor}, nil
}

type stubDeposits struct {
	deposit  models.Deposit
	getErr   error
	created  []models.Deposit
	reviewed []string
}

func (s *stubDeposits) Create(ctx context.Context, tx store.Execer, deposit models.Deposit) error {
	s.created = append(s.created, deposit)
	return nil
}

func (s *stubDeposits) GetForUpdate(ctx context.Context, tx store.Getter, depositID string) (models.Deposit, error) {
	return s.deposit, s.getErr
}

func (s *stubDeposits) MarkReviewed(ctx context.Context, tx store.Execer, depositID, status, reviewerID string, planID *string, notes string) error {
	s.reviewed = append(s.reviewed, status)
	return nil
}

type stubWithdrawals struct {
	withdrawal models.Withdrawal
	getErr     error
	created    []models.Withdrawal
	reviewed   []string
}

func (s *stubWithdrawals) Create(ctx context.Context, tx store.Execer, withdrawal models.Withdrawal) error {
	s.created = append(s.created, withdrawal)
	return nil
}

func (s *stubWithdrawals) GetForUpdate(ctx context.Context, tx store.Getter, withdrawalID string) (models.Withdrawal, error) {
	return s.withdrawal, s.getErr
}

func (s *stubWithdrawals) MarkReviewed(ctx context.Context, tx store.Execer, withdrawalID, status, reviewerID, notes string) error {
	s.reviewed = append(s.reviewed, status)
	return nil
}

type stubPlans struct {
	plans map[string]models.InvestmentPlan
}

func (s *stubPlans) GetByID(ctx context.Context, planID string) (models.InvestmentPlan, error) {
	plan, ok := s.plans[planID]
	if !ok {
		return models.InvestmentPlan{}, sql.ErrNoRows
	}
	return plan, nil
}

type stubInvestments struct {
	byID      map[string]models.Investment
	dueIDs    []string
	hasAny    bool
	getErrFor map[string]error
	created   []models.Investment
	accruals  map[string]int64
	statuses  map[string]string
	principal map[string]int64
}

func newStubInvestments() *stubInvestments {
	return &stubInvestments{
		byID:      map[string]models.Investment{},
		getErrFor: map[string]error{},
		accruals:  map[string]int64{},
		statuses:  map[string]string{},
		principal: map[string]int64{},
	}
}

func (s *stubInvestments) Create(ctx context.Context, tx store.Execer, inv models.Investment) error {
	s.created = append(s.created, inv)
	return nil
}

func (s *stubInvestments) GetForUpdate(ctx context.Context, tx store.Getter, investmentID string) (models.Investment, error) {
	if err := s.getErrFor[investmentID]; err != nil {
		return models.Investment{}, err
	}
	inv, ok := s.byID[investmentID]
	if !ok {
		return models.Investment{}, sql.ErrNoRows
	}
	return inv, nil
}

func (s *stubInvestments) ListDueForAccrual(ctx context.Context, dayStart time.Time) ([]string, error) {
	return s.dueIDs, nil
}

func (s *stubInvestments) RecordAccrual(ctx context.Context, tx store.Execer, investmentID string, profit int64, profitDate time.Time) error {
	s.accruals[investmentID] += profit
	inv := s.byID[investmentID]
	inv.LastProfitDate = &profitDate
	s.byID[investmentID] = inv
	return nil
}

func (s *stubInvestments) UpdateStatus(ctx context.Context, tx store.Execer, investmentID, status string) error {
	s.statuses[investmentID] = status
	inv := s.byID[investmentID]
	inv.Status = status
	s.byID[investmentID] = inv
	return nil
}

func (s *stubInvestments) HasAny(ctx context.Context, tx store.Getter, userID string) (bool, error) {
	return s.hasAny, nil
}

func (s *stubInvestments) ActivePrincipal(ctx context.Context, userID string) (int64, error) {
	return s.principal[userID], nil
}

type stubUsers struct {
	byID      map[string]models.User
	raised    map[string]int
	earnings  map[string]int64
	referrers []string
	referrals map[string][]models.User
	getErrFor map[string]error
}

func newStubUsers() *stubUsers {
	return &stubUsers{
		byID:      map[string]models.User{},
		raised:    map[string]int{},
		earnings:  map[string]int64{},
		referrals: map[string][]models.User{},
		getErrFor: map[string]error{},
	}
}

func (s *stubUsers) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error) {
	if err := s.getErrFor[userID]; err != nil {
		return models.User{}, err
	}
	user, ok := s.byID[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (s *stubUsers) RaiseLevel(ctx context.Context, tx store.Execer, userID string, minLevel int) error {
	if s.raised[userID] < minLevel {
		s.raised[userID] = minLevel
	}
	return nil
}

func (s *stubUsers) AddAffiliateEarnings(ctx context.Context, tx store.Execer, userID string, deltaMinor int64) error {
	s.earnings[userID] += deltaMinor
	return nil
}

func (s *stubUsers) ListReferrerIDs(ctx context.Context) ([]string, error) {
	return s.referrers, nil
}

func (s *stubUsers) ListDirectReferrals(ctx context.Context, referrerID string) ([]models.User, error) {
	return s.referrals[referrerID], nil
}

type stubRates struct {
	cells map[[2]int]models.CommissionRate
}

func (s *stubRates) Get(ctx context.Context, referrerLevel, referralLevel int) (models.CommissionRate, error) {
	rate, ok := s.cells[[2]int{referrerLevel, referralLevel}]
	if !ok {
		return models.CommissionRate{}, sql.ErrNoRows
	}
	return rate, nil
}

type stubRewards struct {
	inputs   []store.RewardInput
	existing map[string]bool
	err      error
}

func rewardKey(input store.RewardInput) string {
	return input.ReferrerID + "|" + input.ReferralID + "|" + input.RewardDate.Format("2006-01-02") + "|" + input.Kind
}

func (s *stubRewards) Create(ctx context.Context, tx store.Execer, input store.RewardInput) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	key := rewardKey(input)
	if s.existing == nil {
		s.existing = map[string]bool{}
	}
	if s.existing[key] {
		return false, nil
	}
	s.existing[key] = true
	s.inputs = append(s.inputs, input)
	return true, nil
}

type stubCommissions struct {
	calls  int
	amount int64
	err    error
}

func (s *stubCommissions) PayFirstPurchaseCommission(ctx context.Context, tx *sqlx.Tx, inv models.Investment, planLevel int, referrerID string, now time.Time) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.amount, nil
}

type stubAudit struct {
	actions []string
}

func (s *stubAudit) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	s.actions = append(s.actions, action)
	return nil
}
