package store

import (
	"context"
	"time"
)

type BatchStore struct {
	db DB
}

func NewBatchStore(db DB) *BatchStore {
	return &BatchStore{db: db}
}

// ClaimRun claims the daily batch run for the given calendar day. A day
// that finished stays claimed forever; a day that was started but never
// finished (crashed run) is reclaimable, since the per-investment
// last_profit_date guard and the reward uniqueness constraint make a
// resume safe.
func (s *BatchStore) ClaimRun(ctx context.Context, runDate time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO batch_runs (run_date, started_at)
		VALUES ($1, NOW())
		ON CONFLICT (run_date) DO UPDATE SET started_at = NOW()
		WHERE batch_runs.finished_at IS NULL
	`, runDate)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *BatchStore) FinishRun(ctx context.Context, runDate time.Time, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE batch_runs
		SET finished_at = NOW(), summary = $1
		WHERE run_date = $2
	`, summary, runDate)
	return err
}
