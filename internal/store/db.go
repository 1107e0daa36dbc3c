package store

import (
	"context"
	"database/sql"
)

// Stores take the narrowest handle they need so the same method works
// against *sqlx.DB outside a transaction and *sqlx.Tx inside one.

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}
