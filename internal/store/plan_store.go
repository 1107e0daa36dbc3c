package store

import (
	"context"

	"investhub/internal/models"
)

type PlanStore struct {
	db DB
}

func NewPlanStore(db DB) *PlanStore {
	return &PlanStore{db: db}
}

func (s *PlanStore) Create(ctx context.Context, tx Execer, plan models.InvestmentPlan) error {
	query := `
		INSERT INTO investment_plans (id, name, description, kind, min_amount, max_amount, duration_days, return_rate, daily_rate, min_level, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Description, plan.Kind, plan.MinAmount, plan.MaxAmount,
		plan.DurationDays, plan.ReturnRate, plan.DailyRate, plan.MinLevel, plan.IsActive, plan.IsFeatured,
	)
	return err
}

func (s *PlanStore) Update(ctx context.Context, tx Execer, plan models.InvestmentPlan) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE investment_plans
		SET name = $1, description = $2, kind = $3, min_amount = $4, max_amount = $5,
		    duration_days = $6, return_rate = $7, daily_rate = $8, min_level = $9,
		    is_active = $10, is_featured = $11
		WHERE id = $12
	`,
		plan.Name, plan.Description, plan.Kind, plan.MinAmount, plan.MaxAmount,
		plan.DurationDays, plan.ReturnRate, plan.DailyRate, plan.MinLevel,
		plan.IsActive, plan.IsFeatured, plan.ID,
	)
	return err
}

func (s *PlanStore) GetByID(ctx context.Context, planID string) (models.InvestmentPlan, error) {
	var row models.InvestmentPlan
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, kind, min_amount, max_amount, duration_days, return_rate, daily_rate, min_level, is_active, is_featured, created_at
		FROM investment_plans
		WHERE id = $1
	`, planID)
	return row, err
}

func (s *PlanStore) ListActive(ctx context.Context) ([]models.InvestmentPlan, error) {
	var rows []models.InvestmentPlan
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, kind, min_amount, max_amount, duration_days, return_rate, daily_rate, min_level, is_active, is_featured, created_at
		FROM investment_plans
		WHERE is_active = TRUE
		ORDER BY is_featured DESC, min_level, min_amount
	`)
	return rows, err
}
