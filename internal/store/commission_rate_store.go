package store

import (
	"context"

	"investhub/internal/models"
)

type CommissionRateStore struct {
	db DB
}

func NewCommissionRateStore(db DB) *CommissionRateStore {
	return &CommissionRateStore{db: db}
}

// Get fetches one cell of the commission table. A missing cell is not
// an error to callers; they translate sql.ErrNoRows into a zero reward.
func (s *CommissionRateStore) Get(ctx context.Context, referrerLevel, referralLevel int) (models.CommissionRate, error) {
	var row models.CommissionRate
	err := s.db.GetContext(ctx, &row, `
		SELECT referrer_level, referral_level, kind, amount_minor, rate
		FROM commission_rates
		WHERE referrer_level = $1 AND referral_level = $2
	`, referrerLevel, referralLevel)
	return row, err
}

func (s *CommissionRateStore) Upsert(ctx context.Context, tx Execer, rate models.CommissionRate) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO commission_rates (referrer_level, referral_level, kind, amount_minor, rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (referrer_level, referral_level)
		DO UPDATE SET kind = EXCLUDED.kind, amount_minor = EXCLUDED.amount_minor, rate = EXCLUDED.rate
	`, rate.ReferrerLevel, rate.ReferralLevel, rate.Kind, rate.AmountMinor, rate.Rate)
	return err
}

func (s *CommissionRateStore) ListAll(ctx context.Context) ([]models.CommissionRate, error) {
	var rows []models.CommissionRate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT referrer_level, referral_level, kind, amount_minor, rate
		FROM commission_rates
		ORDER BY referrer_level, referral_level
	`)
	return rows, err
}
