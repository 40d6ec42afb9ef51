package fallback

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

func TestPostgresSnapshotRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("MPDASH_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MPDASH_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := NewPostgres(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	key := fmt.Sprintf("it:%d", stamp)
	marketplace := fmt.Sprintf("it-mp-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM dashboard_snapshots WHERE key = $1`, key)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_snapshots WHERE marketplace = $1`, marketplace)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM daily_metrics WHERE marketplace = $1`, marketplace)
	})

	s.Save(ctx, key, domain.StockSummary{Total: 21})
	var loaded domain.StockSummary
	if !s.Load(ctx, key, &loaded) || loaded.Total != 21 {
		t.Fatalf("expected saved snapshot to load, got %+v", loaded)
	}

	// Upsert replaces the record in place.
	s.Save(ctx, key, domain.StockSummary{Total: 22})
	if !s.Load(ctx, key, &loaded) || loaded.Total != 22 {
		t.Fatalf("expected replaced snapshot, got %+v", loaded)
	}

	now := time.Now().UTC()
	totals := []domain.NamedCount{{Name: "Alpha", Qty: 5}, {Name: "Beta", Qty: 3}}
	if err := s.RecordStockSnapshots(ctx, marketplace, totals, now); err != nil {
		t.Fatalf("record snapshots: %v", err)
	}

	var rows int
	if err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM stock_snapshots WHERE marketplace = $1
	`, marketplace).Scan(&rows); err != nil {
		t.Fatalf("count snapshots: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 history rows, got %d", rows)
	}

	if err := s.UpsertDailyMetric(ctx, marketplace, now, 4, 2); err != nil {
		t.Fatalf("upsert metric: %v", err)
	}
	if err := s.UpsertDailyMetric(ctx, marketplace, now, 6, 3); err != nil {
		t.Fatalf("upsert metric again: %v", err)
	}

	var ordered, purchased int
	if err := s.db.QueryRowContext(ctx, `
		SELECT ordered_count, purchased_count FROM daily_metrics
		WHERE marketplace = $1 AND date = $2
	`, marketplace, now.Format("2006-01-02")).Scan(&ordered, &purchased); err != nil {
		t.Fatalf("read metric: %v", err)
	}
	if ordered != 6 || purchased != 3 {
		t.Fatalf("expected upsert to replace counters, got %d/%d", ordered, purchased)
	}
}
