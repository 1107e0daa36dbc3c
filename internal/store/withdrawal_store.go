package store

import (
	"context"

	"investhub/internal/models"
)

type WithdrawalStore struct {
	db DB
}

func NewWithdrawalStore(db DB) *WithdrawalStore {
	return &WithdrawalStore{db: db}
}

func (s *WithdrawalStore) Create(ctx context.Context, tx Execer, withdrawal models.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, user_id, amount, currency, destination, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		withdrawal.ID, withdrawal.UserID, withdrawal.Amount, withdrawal.Currency,
		withdrawal.Destination, withdrawal.Status, withdrawal.Notes,
	)
	return err
}

func (s *WithdrawalStore) GetForUpdate(ctx context.Context, tx Getter, withdrawalID string) (models.Withdrawal, error) {
	var row models.Withdrawal
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, amount, currency, destination, status, reviewer_id, reviewed_at, notes, created_at
		FROM withdrawals
		WHERE id = $1
		FOR UPDATE
	`, withdrawalID)
	return row, err
}

func (s *WithdrawalStore) MarkReviewed(ctx context.Context, tx Execer, withdrawalID, status, reviewerID, notes string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $1, reviewer_id = $2, notes = $3, reviewed_at = NOW()
		WHERE id = $4
	`, status, reviewerID, notes, withdrawalID)
	return err
}

func (s *WithdrawalStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Withdrawal, error) {
	var rows []models.Withdrawal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount, currency, destination, status, reviewer_id, reviewed_at, notes, created_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *WithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error) {
	var rows []models.Withdrawal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount, currency, destination, status, reviewer_id, reviewed_at, notes, created_at
		FROM withdrawals
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return rows, err
}
