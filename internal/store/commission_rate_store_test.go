package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"investhub/internal/models"
)

func TestCommissionRateStoreGet(t *testing.T) {
	ctx := context.Background()
	store := NewCommissionRateStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM commission_rates") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != 2 || args[1] != 3 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.CommissionRate) = models.CommissionRate{ReferrerLevel: 2, ReferralLevel: 3, Kind: "percent", Rate: "1.0000"}
			return nil
		},
	})
	rate, err := store.Get(ctx, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Kind != "percent" || rate.Rate != "1.0000" {
		t.Fatalf("unexpected rate: %#v", rate)
	}
}

func TestCommissionRateStoreGetMissingCell(t *testing.T) {
	ctx := context.Background()
	store := NewCommissionRateStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			return sql.ErrNoRows
		},
	})
	_, err := store.Get(ctx, 4, 4)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCommissionRateStoreUpsert(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "ON CONFLICT (referrer_level, referral_level)") || !strings.Contains(query, "DO UPDATE SET") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 5 || args[2] != "fixed" || args[3] != int64(2500) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewCommissionRateStore(stubDB{})
	err := store.Upsert(ctx, execer, models.CommissionRate{ReferrerLevel: 1, ReferralLevel: 1, Kind: "fixed", AmountMinor: 2500, Rate: "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
