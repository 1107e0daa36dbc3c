package store

import (
	"context"
	"time"

	"investhub/internal/models"
)

type RewardStore struct {
	db DB
}

func NewRewardStore(db DB) *RewardStore {
	return &RewardStore{db: db}
}

type RewardInput struct {
	ID            string
	ReferrerID    string
	ReferralID    string
	Amount        int64
	Level         int
	ReferrerLevel int
	Kind          string
	RewardDate    time.Time
	Status        string
	InvestmentID  *string
}

// Create inserts a reward row and reports whether it was actually
// written. The unique index on (referrer_id, referral_id, reward_date,
// kind) turns a batch re-run into inserted=false instead of a second
// payout.
func (s *RewardStore) Create(ctx context.Context, tx Execer, input RewardInput) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO affiliate_rewards (id, referrer_id, referral_id, amount, level, referrer_level, kind, reward_date, status, investment_id, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (referrer_id, referral_id, reward_date, kind) DO NOTHING
	`,
		input.ID, input.ReferrerID, input.ReferralID, input.Amount, input.Level,
		input.ReferrerLevel, input.Kind, input.RewardDate, input.Status, input.InvestmentID,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *RewardStore) ListByReferrer(ctx context.Context, referrerID string, limit, offset int) ([]models.AffiliateReward, error) {
	var rows []models.AffiliateReward
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, referrer_id, referral_id, amount, level, referrer_level, kind, reward_date, status, investment_id, processed_at
		FROM affiliate_rewards
		WHERE referrer_id = $1
		ORDER BY processed_at DESC
		LIMIT $2 OFFSET $3
	`, referrerID, limit, offset)
	return rows, err
}
