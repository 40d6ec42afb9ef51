package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/alias"
	"github.com/Vafelkin/mp-dashboard/internal/cache"
	"github.com/Vafelkin/mp-dashboard/internal/config"
	"github.com/Vafelkin/mp-dashboard/internal/dashboard"
	"github.com/Vafelkin/mp-dashboard/internal/fallback"
	"github.com/Vafelkin/mp-dashboard/internal/httpapi"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace/ozon"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace/wb"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	var snapshots fallback.Store
	closers := make([]func() error, 0, 1)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := fallback.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start without the configured fallback store", err)
		}
		snapshots = pg
		closers = append(closers, pg.Close)
		log.Println("fallback store: postgres")
	case cfg.RedisAddr != "":
		rd := fallback.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rd.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using in-memory fallback store", err)
			snapshots = fallback.NewMemory()
		} else {
			snapshots = rd
			closers = append(closers, rd.Close)
			log.Println("fallback store: redis")
		}
	default:
		snapshots = fallback.NewMemory()
		log.Println("fallback store: in-memory")
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

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.AdminPassword)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("marketplace dashboard listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
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
