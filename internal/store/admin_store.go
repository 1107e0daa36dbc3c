package store

import (
	"context"
	"database/sql"
	"errors"
)

// AdminStore backs the reviewer gate: a row in admins marks a user as
// staff, admin_roles holds the per-capability grants, and is_super
// bypasses role checks entirely.
type AdminStore struct {
	db DB
}

func NewAdminStore(db DB) *AdminStore {
	return &AdminStore{db: db}
}

func (s *AdminStore) IsAdmin(ctx context.Context, userID string) (isAdmin bool, isSuper bool, err error) {
	err = s.db.GetContext(ctx, &isSuper, `
		SELECT is_super
		FROM admins
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, isSuper, nil
}

func (s *AdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var found bool
	err := s.db.GetContext(ctx, &found, `
		SELECT EXISTS (
			SELECT 1 FROM admin_roles
			WHERE admin_user_id = $1 AND role = $2
		)
	`, userID, role)
	return found, err
}

// CreateAdmin is idempotent so the first-registration bootstrap and a
// later explicit grant cannot conflict.
func (s *AdminStore) CreateAdmin(ctx context.Context, tx Execer, userID string, isSuper bool, createdBy *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO admins (user_id, is_super, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, isSuper, createdBy)
	return err
}

func (s *AdminStore) GrantRole(ctx context.Context, tx Execer, adminUserID, role string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO admin_roles (admin_user_id, role)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, adminUserID, role)
	return err
}

// HasAnyAdmin reads through the caller's handle so the first-admin
// bootstrap check sees the registration transaction it runs inside.
func (s *AdminStore) HasAnyAdmin(ctx context.Context, q Getter) (bool, error) {
	var found bool
	err := q.GetContext(ctx, &found, `SELECT EXISTS (SELECT 1 FROM admins)`)
	return found, err
}
