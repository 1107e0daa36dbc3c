package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"investhub/internal/models"
)

func TestWalletStoreEnsureExists(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO wallets") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "ON CONFLICT (user_id, currency) DO NOTHING") {
				t.Fatalf("expected conflict clause, got: %s", query)
			}
			if len(args) != 3 || args[0] != "w-1" || args[1] != "user-1" || args[2] != "USD" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewWalletStore(stubDB{})
	if err := store.EnsureExists(ctx, execer, "w-1", "user-1", "USD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWalletStoreGetForUpdate(t *testing.T) {
	ctx := context.Background()
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM wallets") || !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock query, got: %s", query)
			}
			if len(args) != 2 || args[0] != "user-1" || args[1] != "USD" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.Wallet) = models.Wallet{ID: "w-1", UserID: "user-1", Balance: 5000}
			return nil
		},
	}
	store := NewWalletStore(stubDB{})
	wallet, err := store.GetForUpdate(ctx, getter, "user-1", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.ID != "w-1" || wallet.Balance != 5000 {
		t.Fatalf("unexpected wallet: %#v", wallet)
	}
}

func TestWalletStoreUpdateBalance(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE wallets") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != int64(7500) || args[1] != "w-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewWalletStore(stubDB{})
	if err := store.UpdateBalance(ctx, execer, "w-1", 7500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWalletStoreReconcile(t *testing.T) {
	ctx := context.Background()
	store := NewWalletStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "LEFT JOIN transactions") || !strings.Contains(query, "t.status = 'completed'") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*[]WalletReconciliation) = []WalletReconciliation{
				{WalletID: "w-1", StoredBalance: 100, CalculatedBalance: 100, Difference: 0},
				{WalletID: "w-2", StoredBalance: 100, CalculatedBalance: 90, Difference: 10},
			}
			return nil
		},
	})
	rows, err := store.Reconcile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[1].Difference != 10 {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}
