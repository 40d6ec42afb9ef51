package fallback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
	"github.com/Vafelkin/mp-dashboard/internal/xid"
)

// Postgres keeps one JSONB record per cache key plus the historical
// stock snapshot and daily metric tables written by the refresh job.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Postgres{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dashboard_snapshots (
			key        text PRIMARY KEY,
			payload    jsonb NOT NULL,
			updated_at timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stock_snapshots (
			id             text PRIMARY KEY,
			marketplace    text NOT NULL,
			warehouse_name text NOT NULL,
			sku            text NOT NULL,
			quantity       integer NOT NULL DEFAULT 0,
			captured_at    timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			marketplace     text NOT NULL,
			date            date NOT NULL,
			ordered_count   integer NOT NULL DEFAULT 0,
			purchased_count integer NOT NULL DEFAULT 0,
			PRIMARY KEY (marketplace, date)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) Save(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("[fallback] WARN: failed to marshal snapshot key=%s: %v", key, err)
		return
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_snapshots (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET payload = $2, updated_at = now()
	`, key, payload)
	if err != nil {
		log.Printf("[fallback] WARN: failed to save snapshot key=%s: %v", key, err)
	}
}

func (s *Postgres) Load(ctx context.Context, key string, dst any) bool {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM dashboard_snapshots WHERE key = $1
	`, key).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[fallback] WARN: failed to load snapshot key=%s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		log.Printf("[fallback] WARN: corrupt snapshot key=%s: %v", key, err)
		return false
	}
	return true
}

// RecordStockSnapshots appends one history row per SKU total. Used by
// the refresh job to keep a trail of per-day stock levels.
func (s *Postgres) RecordStockSnapshots(ctx context.Context, marketplace string, totals []domain.NamedCount, capturedAt time.Time) error {
	for _, t := range totals {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO stock_snapshots (id, marketplace, warehouse_name, sku, quantity, captured_at)
			VALUES ($1, $2, 'TOTAL', $3, $4, $5)
		`, xid.New("snap"), marketplace, t.Name, t.Qty, capturedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpsertDailyMetric replaces today's counters for a marketplace.
func (s *Postgres) UpsertDailyMetric(ctx context.Context, marketplace string, day time.Time, ordered int, purchased int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_metrics (marketplace, date, ordered_count, purchased_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (marketplace, date) DO UPDATE SET ordered_count = $3, purchased_count = $4
	`, marketplace, day.Format("2006-01-02"), ordered, purchased)
	return err
}
