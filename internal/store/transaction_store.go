package store

import (
	"context"

	"investhub/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID          string
	UserID      string
	WalletID    string
	Type        string
	Status      string
	Source      string
	Amount      int64
	Currency    string
	Description string
	Metadata    string
	ReferenceID *string
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, user_id, wallet_id, type, status, source, amount, currency, description, metadata, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.WalletID, input.Type, input.Status, input.Source,
		input.Amount, input.Currency, input.Description, input.Metadata, input.ReferenceID,
	)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	query := `
		SELECT id, user_id, wallet_id, type, status, source, amount, currency, description, metadata, reference_id, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if source != "" {
		query += ` AND source = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, source, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

// SumCompletedByUser recomputes a user's balance from the transaction
// log. The reconciliation surface compares it against the stored wallet
// balance.
func (s *TransactionStore) SumCompletedByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = $1 AND status = 'completed'
	`, userID)
	return sum, err
}
