package store

import (
	"context"
	"time"

	"investhub/internal/models"
)

type InvestmentStore struct {
	db DB
}

func NewInvestmentStore(db DB) *InvestmentStore {
	return &InvestmentStore{db: db}
}

func (s *InvestmentStore) Create(ctx context.Context, tx Execer, inv models.Investment) error {
	query := `
		INSERT INTO investments (id, user_id, plan_id, deposit_id, amount, profit, status, first_investment, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query,
		inv.ID, inv.UserID, inv.PlanID, inv.DepositID, inv.Amount, inv.Profit,
		inv.Status, inv.FirstInvestment, inv.StartDate, inv.EndDate,
	)
	return err
}

func (s *InvestmentStore) GetForUpdate(ctx context.Context, tx Getter, investmentID string) (models.Investment, error) {
	var row models.Investment
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, plan_id, deposit_id, amount, profit, status, first_investment, start_date, end_date, last_profit_date, created_at
		FROM investments
		WHERE id = $1
		FOR UPDATE
	`, investmentID)
	return row, err
}

// ListDueForAccrual returns active investments that have not yet been
// credited on or after dayStart. The re-check under row lock inside the
// accrual transaction is the authoritative guard; this listing just
// keeps the batch from visiting rows it would skip anyway.
func (s *InvestmentStore) ListDueForAccrual(ctx context.Context, dayStart time.Time) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT id
		FROM investments
		WHERE status = 'active'
		  AND (last_profit_date IS NULL OR last_profit_date < $1)
		ORDER BY created_at
	`, dayStart)
	return ids, err
}

func (s *InvestmentStore) RecordAccrual(ctx context.Context, tx Execer, investmentID string, profit int64, profitDate time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE investments
		SET profit = profit + $1, last_profit_date = $2
		WHERE id = $3
	`, profit, profitDate, investmentID)
	return err
}

func (s *InvestmentStore) UpdateStatus(ctx context.Context, tx Execer, investmentID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE investments
		SET status = $1
		WHERE id = $2
	`, status, investmentID)
	return err
}

// HasAny reports whether the user has ever invested. Called under the
// locked user row during deposit approval so concurrent first purchases
// cannot both observe "no investments yet".
func (s *InvestmentStore) HasAny(ctx context.Context, tx Getter, userID string) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM investments
		WHERE user_id = $1
	`, userID)
	return count > 0, err
}

func (s *InvestmentStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Investment, error) {
	var rows []models.Investment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, plan_id, deposit_id, amount, profit, status, first_investment, start_date, end_date, last_profit_date, created_at
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

type InvestmentStats struct {
	TotalInvested  int64 `db:"total_invested"`
	TotalProfit    int64 `db:"total_profit"`
	ActiveCount    int   `db:"active_count"`
	CompletedCount int   `db:"completed_count"`
}

func (s *InvestmentStore) StatsByUser(ctx context.Context, userID string) (InvestmentStats, error) {
	var stats InvestmentStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COALESCE(SUM(amount), 0) AS total_invested,
		       COALESCE(SUM(profit), 0) AS total_profit,
		       COUNT(1) FILTER (WHERE status = 'active') AS active_count,
		       COUNT(1) FILTER (WHERE status = 'completed') AS completed_count
		FROM investments
		WHERE user_id = $1
	`, userID)
	return stats, err
}

// ActivePrincipal sums the user's active invested principal, the
// reference amount for percentage-type daily commissions.
func (s *InvestmentStore) ActivePrincipal(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM investments
		WHERE user_id = $1 AND status = 'active'
	`, userID)
	return sum, err
}
