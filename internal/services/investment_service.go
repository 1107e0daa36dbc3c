package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"investhub/internal/db"
	"investhub/internal/models"
	"investhub/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// InvestmentService owns the deposit and investment lifecycle. Approval
// turns a pending deposit into an active investment plus one ledger
// credit; the daily accrual pass posts profit and completes investments
// whose term has ended.
type InvestmentService struct {
	txRunner    db.TxRunner
	deposits    DepositStore
	withdrawals WithdrawalStore
	plans       PlanStore
	investments InvestmentStore
	users       UserStore
	ledger      Ledger
	commissions FirstPurchasePayer
	audit       AuditStore
}

type DepositStore interface {
	Create(ctx context.Context, tx store.Execer, deposit models.Deposit) error
	GetForUpdate(ctx context.Context, tx store.Getter, depositID string) (models.Deposit, error)
	MarkReviewed(ctx context.Context, tx store.Execer, depositID, status, reviewerID string, planID *string, notes string) error
}

type WithdrawalStore interface {
	Create(ctx context.Context, tx store.Execer, withdrawal models.Withdrawal) error
	GetForUpdate(ctx context.Context, tx store.Getter, withdrawalID string) (models.Withdrawal, error)
	MarkReviewed(ctx context.Context, tx store.Execer, withdrawalID, status, reviewerID, notes string) error
}

type PlanStore interface {
	GetByID(ctx context.Context, planID string) (models.InvestmentPlan, error)
}

type InvestmentStore interface {
	Create(ctx context.Context, tx store.Execer, inv models.Investment) error
	GetForUpdate(ctx context.Context, tx store.Getter, investmentID string) (models.Investment, error)
	ListDueForAccrual(ctx context.Context, dayStart time.Time) ([]string, error)
	RecordAccrual(ctx context.Context, tx store.Execer, investmentID string, profit int64, profitDate time.Time) error
	UpdateStatus(ctx context.Context, tx store.Execer, investmentID, status string) error
	HasAny(ctx context.Context, tx store.Getter, userID string) (bool, error)
}

type UserStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	RaiseLevel(ctx context.Context, tx store.Execer, userID string, minLevel int) error
}

type Ledger interface {
	CreditInTx(ctx context.Context, tx *sqlx.Tx, req CreditRequest) (models.Transaction, int64, error)
	DebitInTx(ctx context.Context, tx *sqlx.Tx, req DebitRequest) (models.Transaction, int64, error)
	RecordFailedInTx(ctx context.Context, tx *sqlx.Tx, userID string, amountMinor int64, source, description, reason string) (models.Transaction, error)
}

// FirstPurchasePayer pays the one-time commission for a referred user's
// first investment, joining the approval transaction.
type FirstPurchasePayer interface {
	PayFirstPurchaseCommission(ctx context.Context, tx *sqlx.Tx, inv models.Investment, planLevel int, referrerID string, now time.Time) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func NewInvestmentService(txRunner db.TxRunner, deposits DepositStore, withdrawals WithdrawalStore, plans PlanStore, investments InvestmentStore, users UserStore, ledger Ledger, commissions FirstPurchasePayer, audit AuditStore) *InvestmentService {
	return &InvestmentService{
		txRunner:    txRunner,
		deposits:    deposits,
		withdrawals: withdrawals,
		plans:       plans,
		investments: investments,
		users:       users,
		ledger:      ledger,
		commissions: commissions,
		audit:       audit,
	}
}

type CreateDepositRequest struct {
	UserID        string
	AmountMinor   int64
	Currency      string
	PaymentMethod string
	EvidenceRef   string
}

func (s *InvestmentService) CreateDeposit(ctx context.Context, req CreateDepositRequest) (models.Deposit, error) {
	if req.AmountMinor <= 0 {
		return models.Deposit{}, ErrInvalidAmount
	}
	deposit := models.Deposit{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Amount:        req.AmountMinor,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		EvidenceRef:   req.EvidenceRef,
		Status:        models.ReviewStatusPending,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.deposits.Create(ctx, tx, deposit)
	})
	if err != nil {
		return models.Deposit{}, err
	}
	return deposit, nil
}

type ApproveDepositRequest struct {
	DepositID  string
	PlanID     string
	ReviewerID string
	Notes      string
	Now        time.Time
}

// ApproveDeposit moves a pending deposit to approved, spawning exactly
// one active investment and one completed credit transaction. Either the
// whole approval commits or the deposit stays pending; no partial state
// is observable. A second approval attempt finds a non-pending row under
// the lock and fails with ErrAlreadyProcessed.
func (s *InvestmentService) ApproveDeposit(ctx context.Context, req ApproveDepositRequest) (models.Investment, error) {
	var inv models.Investment
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		deposit, err := s.deposits.GetForUpdate(ctx, tx, req.DepositID)
		if err != nil {
			return notFoundOr(err)
		}
		if deposit.Status != models.ReviewStatusPending {
			return ErrAlreadyProcessed
		}
		plan, err := s.plans.GetByID(ctx, req.PlanID)
		if err != nil {
			return notFoundOr(err)
		}
		if !plan.IsActive {
			return ErrPlanInactive
		}
		if deposit.Amount < plan.MinAmount || (plan.MaxAmount > 0 && deposit.Amount > plan.MaxAmount) {
			return ErrAmountOutOfRange
		}
		user, err := s.users.GetForUpdate(ctx, tx, deposit.UserID)
		if err != nil {
			return err
		}
		first, err := s.investments.HasAny(ctx, tx, deposit.UserID)
		if err != nil {
			return err
		}
		first = !first
		if err := s.deposits.MarkReviewed(ctx, tx, deposit.ID, models.ReviewStatusApproved, req.ReviewerID, &plan.ID, req.Notes); err != nil {
			return err
		}
		start := req.Now
		inv = models.Investment{
			ID:              uuid.NewString(),
			UserID:          deposit.UserID,
			PlanID:          plan.ID,
			DepositID:       deposit.ID,
			Amount:          deposit.Amount,
			Status:          models.InvestmentActive,
			FirstInvestment: first,
			StartDate:       start,
			EndDate:         start.AddDate(0, 0, plan.DurationDays),
		}
		if err := s.investments.Create(ctx, tx, inv); err != nil {
			return err
		}
		// Levels only move up: an approved purchase of a higher-tier
		// plan lifts the account, a lower-tier one never demotes it.
		if err := s.users.RaiseLevel(ctx, tx, deposit.UserID, plan.MinLevel); err != nil {
			return err
		}
		if _, _, err := s.ledger.CreditInTx(ctx, tx, CreditRequest{
			UserID:      deposit.UserID,
			AmountMinor: deposit.Amount,
			Source:      models.SourceDeposit,
			Description: "Deposit approved into plan " + plan.Name,
			ReferenceID: &deposit.ID,
		}); err != nil {
			return err
		}
		if first && user.ReferrerID != nil {
			if _, err := s.commissions.PayFirstPurchaseCommission(ctx, tx, inv, plan.MinLevel, *user.ReferrerID, req.Now); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{
			"deposit_id":    deposit.ID,
			"plan_id":       plan.ID,
			"investment_id": inv.ID,
		})
		return s.audit.Log(ctx, tx, req.ReviewerID, "approve_deposit", "deposit", deposit.ID, string(data))
	})
	if err != nil {
		return models.Investment{}, err
	}
	return inv, nil
}

// RejectDeposit marks the deposit rejected and records a failed-status
// transaction for the audit trail. The balance is untouched.
func (s *InvestmentService) RejectDeposit(ctx context.Context, depositID, reviewerID, notes string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		deposit, err := s.deposits.GetForUpdate(ctx, tx, depositID)
		if err != nil {
			return notFoundOr(err)
		}
		if deposit.Status != models.ReviewStatusPending {
			return ErrAlreadyProcessed
		}
		if err := s.deposits.MarkReviewed(ctx, tx, deposit.ID, models.ReviewStatusRejected, reviewerID, nil, notes); err != nil {
			return err
		}
		if _, err := s.ledger.RecordFailedInTx(ctx, tx, deposit.UserID, deposit.Amount, models.SourceDeposit, "Deposit rejected", notes); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"deposit_id": deposit.ID, "notes": notes})
		return s.audit.Log(ctx, tx, reviewerID, "reject_deposit", "deposit", deposit.ID, string(data))
	})
}

type RequestWithdrawalRequest struct {
	UserID      string
	AmountMinor int64
	Currency    string
	Destination string
}

// RequestWithdrawal debits the wallet immediately as a pending hold, so
// the funds cannot be spent twice while the request awaits review. A
// rejection refunds through a compensating credit.
func (s *InvestmentService) RequestWithdrawal(ctx context.Context, req RequestWithdrawalRequest) (models.Withdrawal, error) {
	if req.AmountMinor <= 0 {
		return models.Withdrawal{}, ErrInvalidAmount
	}
	withdrawal := models.Withdrawal{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Destination: req.Destination,
		Status:      models.ReviewStatusPending,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.withdrawals.Create(ctx, tx, withdrawal); err != nil {
			return err
		}
		_, _, err := s.ledger.DebitInTx(ctx, tx, DebitRequest{
			UserID:      req.UserID,
			AmountMinor: req.AmountMinor,
			Source:      models.SourceWithdrawal,
			Description: "Withdrawal requested",
			ReferenceID: &withdrawal.ID,
		})
		return err
	})
	if err != nil {
		return models.Withdrawal{}, err
	}
	return withdrawal, nil
}

func (s *InvestmentService) ApproveWithdrawal(ctx context.Context, withdrawalID, reviewerID, notes string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		withdrawal, err := s.withdrawals.GetForUpdate(ctx, tx, withdrawalID)
		if err != nil {
			return notFoundOr(err)
		}
		if withdrawal.Status != models.ReviewStatusPending {
			return ErrAlreadyProcessed
		}
		if err := s.withdrawals.MarkReviewed(ctx, tx, withdrawal.ID, models.ReviewStatusApproved, reviewerID, notes); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"withdrawal_id": withdrawal.ID})
		return s.audit.Log(ctx, tx, reviewerID, "approve_withdrawal", "withdrawal", withdrawal.ID, string(data))
	})
}

func (s *InvestmentService) RejectWithdrawal(ctx context.Context, withdrawalID, reviewerID, notes string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		withdrawal, err := s.withdrawals.GetForUpdate(ctx, tx, withdrawalID)
		if err != nil {
			return notFoundOr(err)
		}
		if withdrawal.Status != models.ReviewStatusPending {
			return ErrAlreadyProcessed
		}
		if err := s.withdrawals.MarkReviewed(ctx, tx, withdrawal.ID, models.ReviewStatusRejected, reviewerID, notes); err != nil {
			return err
		}
		if _, _, err := s.ledger.CreditInTx(ctx, tx, CreditRequest{
			UserID:      withdrawal.UserID,
			AmountMinor: withdrawal.Amount,
			Source:      models.SourceRefund,
			Description: "Withdrawal rejected, hold refunded",
			ReferenceID: &withdrawal.ID,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"withdrawal_id": withdrawal.ID, "notes": notes})
		return s.audit.Log(ctx, tx, reviewerID, "reject_withdrawal", "withdrawal", withdrawal.ID, string(data))
	})
}

// AccrueDailyProfit posts one day of profit to every active investment
// not yet credited for now's calendar date, and completes investments
// whose term ended. Each investment runs in its own transaction; a
// failure is collected into the summary and the pass continues.
func (s *InvestmentService) AccrueDailyProfit(ctx context.Context, now time.Time) (AccrualSummary, error) {
	dayStart := startOfDay(now)
	summary := AccrualSummary{Date: dayStart}
	ids, err := s.investments.ListDueForAccrual(ctx, dayStart)
	if err != nil {
		return summary, err
	}
	for _, id := range ids {
		done, completed, err := s.accrueOne(ctx, id, now, dayStart)
		if err != nil {
			log.Printf("accrual failed for investment %s: %v", id, err)
			summary.Errors = append(summary.Errors, BatchItemError{ID: id, Err: err.Error()})
			continue
		}
		if !done {
			summary.Skipped++
			continue
		}
		summary.Processed++
		if completed {
			summary.Completed++
		}
	}
	return summary, nil
}

func (s *InvestmentService) accrueOne(ctx context.Context, investmentID string, now, dayStart time.Time) (accrued bool, completed bool, err error) {
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		inv, err := s.investments.GetForUpdate(ctx, tx, investmentID)
		if err != nil {
			return notFoundOr(err)
		}
		if inv.Status != models.InvestmentActive {
			return nil
		}
		// Re-check under the row lock: a concurrent or re-run batch may
		// have credited today between the listing and this transaction.
		if inv.LastProfitDate != nil && !inv.LastProfitDate.Before(dayStart) {
			return nil
		}
		plan, err := s.plans.GetByID(ctx, inv.PlanID)
		if err != nil {
			return err
		}
		profit := dailyProfitMinor(plan, inv.Amount)
		if err := s.investments.RecordAccrual(ctx, tx, inv.ID, profit, dayStart); err != nil {
			return err
		}
		if profit > 0 {
			if _, _, err := s.ledger.CreditInTx(ctx, tx, CreditRequest{
				UserID:      inv.UserID,
				AmountMinor: profit,
				Source:      models.SourceInvestmentProfit,
				Description: "Daily profit for plan " + plan.Name,
				ReferenceID: &inv.ID,
			}); err != nil {
				return err
			}
		}
		accrued = true
		// Profit accrues first so the final day is still paid, then the
		// terminal transition happens in the same transaction.
		if !inv.EndDate.After(now) {
			if err := s.investments.UpdateStatus(ctx, tx, inv.ID, models.InvestmentCompleted); err != nil {
				return err
			}
			if plan.Kind == models.PlanKindFixed {
				if _, _, err := s.ledger.CreditInTx(ctx, tx, CreditRequest{
					UserID:      inv.UserID,
					AmountMinor: inv.Amount,
					Source:      models.SourcePrincipalReturn,
					Description: "Principal returned for plan " + plan.Name,
					ReferenceID: &inv.ID,
				}); err != nil {
					return err
				}
			}
			completed = true
		}
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return accrued, completed, nil
}

// Terminate ends an active investment early. Terminal, no further
// accrual; the principal is not returned.
func (s *InvestmentService) Terminate(ctx context.Context, investmentID, reviewerID, notes string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		inv, err := s.investments.GetForUpdate(ctx, tx, investmentID)
		if err != nil {
			return notFoundOr(err)
		}
		if inv.Status != models.InvestmentActive {
			return ErrAlreadyProcessed
		}
		if err := s.investments.UpdateStatus(ctx, tx, inv.ID, models.InvestmentTerminated); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"investment_id": inv.ID, "notes": notes})
		return s.audit.Log(ctx, tx, reviewerID, "terminate_investment", "investment", inv.ID, string(data))
	})
}

// notFoundOr translates a missing row into the service taxonomy so the
// boundary can tell "no such entity" from a real failure.
func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// dailyProfitMinor computes one day of profit in minor units. Fixed
// plans spread amount*returnRate% evenly over the term; yield plans pay
// amount*dailyRate% each day.
func dailyProfitMinor(plan models.InvestmentPlan, amountMinor int64) int64 {
	amount := decimal.NewFromInt(amountMinor)
	hundred := decimal.NewFromInt(100)
	switch plan.Kind {
	case models.PlanKindFixed:
		rate, err := decimal.NewFromString(plan.ReturnRate)
		if err != nil || plan.DurationDays <= 0 {
			return 0
		}
		return amount.Mul(rate).Div(hundred).Div(decimal.NewFromInt(int64(plan.DurationDays))).RoundBank(0).IntPart()
	case models.PlanKindYield:
		rate, err := decimal.NewFromString(plan.DailyRate)
		if err != nil {
			return 0
		}
		return amount.Mul(rate).Div(hundred).RoundBank(0).IntPart()
	default:
		return 0
	}
}
