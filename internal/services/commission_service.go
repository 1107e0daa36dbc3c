package services

import (
	"context"
	"database/sql"
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

// CommissionService computes and pays affiliate rewards from the 4x4
// commission table. Two payout paths exist: a one-time first-purchase
// commission paid inside the deposit approval transaction, and the daily
// recurring batch over every account with direct referrals.
type CommissionService struct {
	txRunner    db.TxRunner
	users       ReferralUserStore
	rates       RateStore
	rewards     RewardStore
	investments PrincipalReader
	ledger      Ledger
}

type ReferralUserStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	AddAffiliateEarnings(ctx context.Context, tx store.Execer, userID string, deltaMinor int64) error
	ListReferrerIDs(ctx context.Context) ([]string, error)
	ListDirectReferrals(ctx context.Context, referrerID string) ([]models.User, error)
}

type RateStore interface {
	Get(ctx context.Context, referrerLevel, referralLevel int) (models.CommissionRate, error)
}

type RewardStore interface {
	Create(ctx context.Context, tx store.Execer, input store.RewardInput) (bool, error)
}

type PrincipalReader interface {
	ActivePrincipal(ctx context.Context, userID string) (int64, error)
}

func NewCommissionService(txRunner db.TxRunner, users ReferralUserStore, rates RateStore, rewards RewardStore, investments PrincipalReader, ledger Ledger) *CommissionService {
	return &CommissionService{
		txRunner:    txRunner,
		users:       users,
		rates:       rates,
		rewards:     rewards,
		investments: investments,
		ledger:      ledger,
	}
}

// PayFirstPurchaseCommission pays the referrer for a referred account's
// first investment, joining the caller's approval transaction so the
// approval and the commission commit together. A missing rate cell is a
// configuration gap, logged and resolved to zero, never an error.
func (s *CommissionService) PayFirstPurchaseCommission(ctx context.Context, tx *sqlx.Tx, inv models.Investment, planLevel int, referrerID string, now time.Time) (int64, error) {
	referrer, err := s.users.GetForUpdate(ctx, tx, referrerID)
	if err != nil {
		return 0, err
	}
	rate, err := s.rates.Get(ctx, referrer.Level, planLevel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("no commission rate configured for levels [%d][%d], skipping first-purchase reward", referrer.Level, planLevel)
			return 0, nil
		}
		return 0, err
	}
	amount := rewardAmountMinor(rate, inv.Amount)
	if amount <= 0 {
		return 0, nil
	}
	inserted, err := s.rewards.Create(ctx, tx, store.RewardInput{
		ID:            uuid.NewString(),
		ReferrerID:    referrerID,
		ReferralID:    inv.UserID,
		Amount:        amount,
		Level:         1,
		ReferrerLevel: referrer.Level,
		Kind:          models.RewardKindFirstPurchase,
		RewardDate:    startOfDay(now),
		Status:        models.TxStatusCompleted,
		InvestmentID:  &inv.ID,
	})
	if err != nil {
		return 0, err
	}
	if !inserted {
		return 0, nil
	}
	if _, _, err := s.ledger.CreditInTx(ctx, tx, CreditRequest{
		UserID:      referrerID,
		AmountMinor: amount,
		Source:      models.SourceReferral,
		Description: "First purchase commission",
		ReferenceID: &inv.ID,
	}); err != nil {
		return 0, err
	}
	if err := s.users.AddAffiliateEarnings(ctx, tx, referrerID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// ProcessDailyAffiliateRewards walks every account with at least one
// direct referral and pays the day's recurring commission. One referrer
// failing is logged and collected; the batch never aborts wholesale.
func (s *CommissionService) ProcessDailyAffiliateRewards(ctx context.Context, now time.Time) (RewardSummary, error) {
	day := startOfDay(now)
	summary := RewardSummary{Date: day}
	referrerIDs, err := s.users.ListReferrerIDs(ctx)
	if err != nil {
		return summary, err
	}
	for _, referrerID := range referrerIDs {
		paid, err := s.processReferrer(ctx, referrerID, day)
		summary.TotalProcessed++
		if err != nil {
			log.Printf("daily reward failed for referrer %s: %v", referrerID, err)
			summary.PerReferrerErrors = append(summary.PerReferrerErrors, BatchItemError{ID: referrerID, Err: err.Error()})
			continue
		}
		if paid > 0 {
			summary.ReferrersRewarded++
			summary.TotalPaidMinor += paid
		}
	}
	return summary, nil
}

// processReferrer sums the per-referral rewards into a single credit.
// The unique (referrer, referral, day, kind) constraint on reward rows
// is the re-run guard: pairs already recorded today contribute nothing,
// so a crashed batch resumed later pays only the missing pairs.
func (s *CommissionService) processReferrer(ctx context.Context, referrerID string, day time.Time) (int64, error) {
	referrals, err := s.users.ListDirectReferrals(ctx, referrerID)
	if err != nil {
		return 0, err
	}
	if len(referrals) == 0 {
		return 0, nil
	}
	type pending struct {
		referral models.User
		amount   int64
	}
	var total int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		total = 0
		referrer, err := s.users.GetForUpdate(ctx, tx, referrerID)
		if err != nil {
			return err
		}
		var toPay []pending
		for _, referral := range referrals {
			amount, err := s.referralReward(ctx, referrer, referral)
			if err != nil {
				return err
			}
			if amount <= 0 {
				continue
			}
			toPay = append(toPay, pending{referral: referral, amount: amount})
		}
		for _, item := range toPay {
			inserted, err := s.rewards.Create(ctx, tx, store.RewardInput{
				ID:            uuid.NewString(),
				ReferrerID:    referrerID,
				ReferralID:    item.referral.ID,
				Amount:        item.amount,
				Level:         1,
				ReferrerLevel: referrer.Level,
				Kind:          models.RewardKindDaily,
				RewardDate:    day,
				Status:        models.TxStatusCompleted,
			})
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			total += item.amount
		}
		if total == 0 {
			return nil
		}
		if _, _, err := s.ledger.CreditInTx(ctx, tx, CreditRequest{
			UserID:      referrerID,
			AmountMinor: total,
			Source:      models.SourceReferral,
			Description: "Daily affiliate commission",
		}); err != nil {
			return err
		}
		return s.users.AddAffiliateEarnings(ctx, tx, referrerID, total)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *CommissionService) referralReward(ctx context.Context, referrer, referral models.User) (int64, error) {
	rate, err := s.rates.Get(ctx, referrer.Level, referral.Level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("no commission rate configured for levels [%d][%d], skipping pair", referrer.Level, referral.Level)
			return 0, nil
		}
		return 0, err
	}
	if rate.Kind == models.RateKindFixed {
		return rate.AmountMinor, nil
	}
	principal, err := s.investments.ActivePrincipal(ctx, referral.ID)
	if err != nil {
		return 0, err
	}
	return rewardAmountMinor(rate, principal), nil
}

// rewardAmountMinor resolves one rate cell against a reference amount.
func rewardAmountMinor(rate models.CommissionRate, referenceMinor int64) int64 {
	if rate.Kind == models.RateKindFixed {
		return rate.AmountMinor
	}
	percent, err := decimal.NewFromString(rate.Rate)
	if err != nil {
		return 0
	}
	return decimal.NewFromInt(referenceMinor).Mul(percent).Div(decimal.NewFromInt(100)).RoundBank(0).IntPart()
}
