package store

import (
	"context"

	"investhub/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, user models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, level, referral_code, referrer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Level, user.ReferralCode, user.ReferrerID)
	return err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, level, referral_code, referrer_id, affiliate_earnings, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return row, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, level, referral_code, referrer_id, affiliate_earnings, created_at
		FROM users
		WHERE email = $1
	`, email)
	return row, err
}

func (s *UserStore) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, level, referral_code, referrer_id, affiliate_earnings, created_at
		FROM users
		WHERE referral_code = $1
	`, code)
	return row, err
}

// GetForUpdate locks the user row for the duration of the surrounding
// transaction. Approval and commission paths lock before reading level
// or first-purchase state.
func (s *UserStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.User, error) {
	var row models.User
	err := tx.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, level, referral_code, referrer_id, affiliate_earnings, created_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID)
	return row, err
}

// RaiseLevel lifts the user's level to at least minLevel. Levels are
// monotonic: the update is a no-op when the user already sits higher.
func (s *UserStore) RaiseLevel(ctx context.Context, tx Execer, userID string, minLevel int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET level = GREATEST(level, $1)
		WHERE id = $2
	`, minLevel, userID)
	return err
}

func (s *UserStore) AddAffiliateEarnings(ctx context.Context, tx Execer, userID string, deltaMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET affiliate_earnings = affiliate_earnings + $1
		WHERE id = $2
	`, deltaMinor, userID)
	return err
}

// ListReferrerIDs returns the ids of every user with at least one
// direct referral, the population the daily commission batch walks.
func (s *UserStore) ListReferrerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT referrer_id
		FROM users
		WHERE referrer_id IS NOT NULL
		ORDER BY referrer_id
	`)
	return ids, err
}

func (s *UserStore) ListDirectReferrals(ctx context.Context, referrerID string) ([]models.User, error) {
	var rows []models.User
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, username, email, password_hash, level, referral_code, referrer_id, affiliate_earnings, created_at
		FROM users
		WHERE referrer_id = $1
		ORDER BY created_at
	`, referrerID)
	return rows, err
}
