package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"
)

func TestBatchStoreClaimRunWins(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store := NewBatchStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO batch_runs") {
				t.Fatalf("unexpected query: %s", query)
			}
			// An unfinished day stays claimable, a finished one does not.
			if !strings.Contains(query, "ON CONFLICT (run_date) DO UPDATE SET started_at = NOW()") ||
				!strings.Contains(query, "WHERE batch_runs.finished_at IS NULL") {
				t.Fatalf("expected reclaimable conflict clause, got: %s", query)
			}
			if len(args) != 1 || args[0] != day {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	claimed, err := store.ClaimRun(ctx, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claimed {
		t.Fatal("expected claim to win")
	}
}

func TestBatchStoreClaimRunDayAlreadyFinished(t *testing.T) {
	ctx := context.Background()
	store := NewBatchStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	})
	claimed, err := store.ClaimRun(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed {
		t.Fatal("expected claim to lose")
	}
}

func TestBatchStoreFinishRun(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store := NewBatchStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE batch_runs") || !strings.Contains(query, "finished_at = NOW()") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != `{"ok":true}` || args[1] != day {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	if err := store.FinishRun(ctx, day, `{"ok":true}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
