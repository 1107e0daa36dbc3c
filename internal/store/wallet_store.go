package store

import (
	"context"

	"investhub/internal/models"
)

type WalletStore struct {
	db DB
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

// EnsureExists inserts the wallet if the user has none for the currency.
// The unique constraint on (user_id, currency) makes concurrent
// first-time credits converge on a single row; losers of the race hit
// ON CONFLICT DO NOTHING and the follow-up GetForUpdate sees the winner.
func (s *WalletStore) EnsureExists(ctx context.Context, tx Execer, id, userID, currency string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, currency, balance, is_active)
		VALUES ($1, $2, $3, 0, TRUE)
		ON CONFLICT (user_id, currency) DO NOTHING
	`, id, userID, currency)
	return err
}

func (s *WalletStore) GetByUser(ctx context.Context, userID, currency string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, currency, balance, is_active, updated_at, created_at
		FROM wallets
		WHERE user_id = $1 AND currency = $2
	`, userID, currency)
	return row, err
}

func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, userID, currency string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, currency, balance, is_active, updated_at, created_at
		FROM wallets
		WHERE user_id = $1 AND currency = $2
		FOR UPDATE
	`, userID, currency)
	return row, err
}

func (s *WalletStore) UpdateBalance(ctx context.Context, tx Execer, walletID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, walletID)
	return err
}

type WalletReconciliation struct {
	WalletID          string `db:"wallet_id"`
	UserID            string `db:"user_id"`
	Currency          string `db:"currency"`
	StoredBalance     int64  `db:"stored_balance"`
	CalculatedBalance int64  `db:"calculated_balance"`
	Difference        int64  `db:"difference"`
}

// Reconcile compares each stored balance against the signed sum of its
// completed transactions. A non-zero difference anywhere means the
// ledger invariant has been violated.
func (s *WalletStore) Reconcile(ctx context.Context) ([]WalletReconciliation, error) {
	var rows []WalletReconciliation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT w.id AS wallet_id,
		       w.user_id,
		       w.currency,
		       w.balance AS stored_balance,
		       COALESCE(SUM(CASE WHEN t.type = 'credit' THEN t.amount ELSE -t.amount END), 0) AS calculated_balance,
		       (w.balance - COALESCE(SUM(CASE WHEN t.type = 'credit' THEN t.amount ELSE -t.amount END), 0)) AS difference
		FROM wallets w
		LEFT JOIN transactions t ON t.wallet_id = w.id AND t.status = 'completed'
		GROUP BY w.id, w.user_id, w.currency, w.balance
		ORDER BY w.user_id
	`)
	return rows, err
}
