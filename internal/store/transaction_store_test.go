package store

import (
	"context"
	"strings"
	"testing"
)

func TestTransactionStoreSumCompletedByUser(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "CASE WHEN type = 'credit' THEN amount ELSE -amount END") {
				t.Fatalf("expected signed sum over the log, got: %s", query)
			}
			if !strings.Contains(query, "status = 'completed'") {
				t.Fatalf("expected completed-only filter, got: %s", query)
			}
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*(dest.(*int64)) = 4200
			return nil
		},
	})
	sum, err := store.SumCompletedByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 4200 {
		t.Fatalf("expected 4200, got %d", sum)
	}
}

func TestTransactionStoreListByUserSourceFilter(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "AND source = $2") {
				t.Fatalf("expected source filter, got: %s", query)
			}
			if len(args) != 4 || args[0] != "user-1" || args[1] != "profit" || args[2] != 25 || args[3] != 50 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.ListByUser(ctx, "user-1", "profit", 25, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
