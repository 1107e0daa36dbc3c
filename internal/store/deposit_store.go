package store

import (
	"context"

	"investhub/internal/models"
)

type DepositStore struct {
	db DB
}

func NewDepositStore(db DB) *DepositStore {
	return &DepositStore{db: db}
}

func (s *DepositStore) Create(ctx context.Context, tx Execer, deposit models.Deposit) error {
	query := `
		INSERT INTO deposits (id, user_id, amount, currency, payment_method, evidence_ref, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		deposit.ID, deposit.UserID, deposit.Amount, deposit.Currency,
		deposit.PaymentMethod, deposit.EvidenceRef, deposit.Status, deposit.Notes,
	)
	return err
}

func (s *DepositStore) GetByID(ctx context.Context, depositID string) (models.Deposit, error) {
	var row models.Deposit
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, amount, currency, payment_method, evidence_ref, status, plan_id, reviewer_id, reviewed_at, notes, created_at
		FROM deposits
		WHERE id = $1
	`, depositID)
	return row, err
}

// GetForUpdate locks the deposit row so two reviewers deciding the same
// deposit serialize; the loser sees a non-pending status.
func (s *DepositStore) GetForUpdate(ctx context.Context, tx Getter, depositID string) (models.Deposit, error) {
	var row models.Deposit
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, amount, currency, payment_method, evidence_ref, status, plan_id, reviewer_id, reviewed_at, notes, created_at
		FROM deposits
		WHERE id = $1
		FOR UPDATE
	`, depositID)
	return row, err
}

func (s *DepositStore) MarkReviewed(ctx context.Context, tx Execer, depositID, status, reviewerID string, planID *string, notes string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE deposits
		SET status = $1, reviewer_id = $2, plan_id = $3, notes = $4, reviewed_at = NOW()
		WHERE id = $5
	`, status, reviewerID, planID, notes, depositID)
	return err
}

func (s *DepositStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Deposit, error) {
	var rows []models.Deposit
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount, currency, payment_method, evidence_ref, status, plan_id, reviewer_id, reviewed_at, notes, created_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *DepositStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Deposit, error) {
	var rows []models.Deposit
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount, currency, payment_method, evidence_ref, status, plan_id, reviewer_id, reviewed_at, notes, created_at
		FROM deposits
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return rows, err
}
