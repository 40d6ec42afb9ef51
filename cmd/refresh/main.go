// Command refresh force-bypasses the dashboard cache so data stays
// fresh independent of user traffic. It is meant to run on a timer
// (cron/systemd). With postgres configured it also appends stock
// snapshot history and upserts today's metric counters.
package main

import (
	"context"
	"log"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/alias"
	"github.com/Vafelkin/mp-dashboard/internal/cache"
	"github.com/Vafelkin/mp-dashboard/internal/config"
	"github.com/Vafelkin/mp-dashboard/internal/dashboard"
	"github.com/Vafelkin/mp-dashboard/internal/domain"
	"github.com/Vafelkin/mp-dashboard/internal/fallback"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace/ozon"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace/wb"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	var snapshots fallback.Store
	var history *fallback.Postgres
	if cfg.DatabaseURL != "" {
		pg, err := fallback.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable: %v", err)
		}
		defer pg.Close()
		snapshots = pg
		history = pg
	} else {
		snapshots = fallback.NewMemory()
		log.Println("[refresh] no DATABASE_URL, snapshots will not be persisted")
	}

	aliases := alias.Default()
	wbService := wb.NewService(wb.NewClient("", loc), aliases, loc)
	ozonService := ozon.NewService(ozon.NewClient(""), aliases, loc)

	svc := dashboard.New(
		cache.New(nil),
		snapshots,
		wbService,
		ozonService,
		wbTokens(cfg),
		ozonAccounts(cfg),
		time.Duration(cfg.CacheTTLSeconds)*time.Second,
	)

	view := svc.Assemble(ctx, true)
	logSection("wb", view.WB)
	logSection("ozon", view.Ozon)

	if history == nil {
		return
	}

	now := time.Now().In(loc)
	persistSection(ctx, history, "wb", view.WB, now)
	persistSection(ctx, history, "ozon", view.Ozon, now)
}

func logSection(name string, section domain.MarketplaceSection) {
	if section.Status == domain.SectionError {
		log.Printf("[refresh] %s: %s", name, section.Warning)
		return
	}
	log.Printf("[refresh] %s: total=%d ordered=%d purchased=%d status=%s",
		name, section.Stocks.Total, section.Today.Ordered, section.Today.Purchased, section.Status)
}

// persistSection records history only for live data: stale or errored
// sections would duplicate yesterday's rows or write zeros.
func persistSection(ctx context.Context, history *fallback.Postgres, name string, section domain.MarketplaceSection, now time.Time) {
	if section.Status != domain.SectionOK {
		return
	}
	if err := history.RecordStockSnapshots(ctx, name, section.Stocks.SKUs, now); err != nil {
		log.Printf("[refresh] WARN: failed to record %s stock snapshots: %v", name, err)
	}
	if err := history.UpsertDailyMetric(ctx, name, now, section.Today.Ordered, section.Today.Purchased); err != nil {
		log.Printf("[refresh] WARN: failed to upsert %s daily metric: %v", name, err)
	}
}

func wbTokens(cfg config.Config) []string {
	tokens := make([]string, 0, len(cfg.WBAccounts))
	for _, a := range cfg.WBAccounts {
		tokens = append(tokens, a.Token)
	}
	return tokens
}

func ozonAccounts(cfg config.Config) []ozon.Account {
	accounts := make([]ozon.Account, 0, len(cfg.OzonAccounts))
	for _, a := range cfg.OzonAccounts {
		accounts = append(accounts, ozon.Account{
			ClientID: a.ClientID,
			APIKey:   a.APIKey,
			SKUs:     a.SKUs,
		})
	}
	return accounts
}
