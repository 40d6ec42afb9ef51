// Package dashboard computes the unified marketplace view: it wraps
// the per-marketplace aggregators with the time-windowed cache, the
// rate-limit stale-read policy and the persistent fallback store, and
// folds both marketplaces into one view model.
package dashboard

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/cache"
	"github.com/Vafelkin/mp-dashboard/internal/domain"
	"github.com/Vafelkin/mp-dashboard/internal/fallback"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace/ozon"
)

// Cache keys are scoped by marketplace and metric, never by account:
// credentials are not part of the key.
const (
	KeyWBStocks   = "wb:stocks"
	KeyWBToday    = "wb:today"
	KeyOzonStocks = "ozon:stocks"
	KeyOzonToday  = "ozon:today"
)

// WBProvider aggregates across Wildberries tokens.
type WBProvider interface {
	Stocks(ctx context.Context, tokens []string) (domain.StockSummary, error)
	Today(ctx context.Context, tokens []string) (domain.TodaySummary, error)
}

// OzonProvider aggregates across Ozon accounts.
type OzonProvider interface {
	Stocks(ctx context.Context, accounts []ozon.Account) (domain.StockSummary, error)
	Today(ctx context.Context, accounts []ozon.Account) (domain.TodaySummary, error)
}

// Result reports how a metric was obtained alongside its value.
type Result struct {
	Status  string
	Warning string
}

type Service struct {
	cache        *cache.Service
	fallback     fallback.Store
	wb           WBProvider
	ozon         OzonProvider
	wbTokens     []string
	ozonAccounts []ozon.Account
	ttl          time.Duration
}

func New(cacheSvc *cache.Service, fb fallback.Store, wbSvc WBProvider, ozonSvc OzonProvider, wbTokens []string, ozonAccounts []ozon.Account, ttl time.Duration) *Service {
	if fb == nil {
		fb = fallback.NewMemory()
	}
	return &Service{
		cache:        cacheSvc,
		fallback:     fb,
		wb:           wbSvc,
		ozon:         ozonSvc,
		wbTokens:     wbTokens,
		ozonAccounts: ozonAccounts,
		ttl:          ttl,
	}
}

// WBStocks is the cached aggregate stock entry point for Wildberries.
func (s *Service) WBStocks(ctx context.Context, force bool) (domain.StockSummary, Result) {
	return resolve(s, ctx, KeyWBStocks, force, domain.EmptyStockSummary, func(ctx context.Context) (domain.StockSummary, error) {
		return s.wb.Stocks(ctx, s.wbTokens)
	})
}

func (s *Service) WBToday(ctx context.Context, force bool) (domain.TodaySummary, Result) {
	return resolve(s, ctx, KeyWBToday, force, domain.EmptyTodaySummary, func(ctx context.Context) (domain.TodaySummary, error) {
		return s.wb.Today(ctx, s.wbTokens)
	})
}

func (s *Service) OzonStocks(ctx context.Context, force bool) (domain.StockSummary, Result) {
	return resolve(s, ctx, KeyOzonStocks, force, domain.EmptyStockSummary, func(ctx context.Context) (domain.StockSummary, error) {
		return s.ozon.Stocks(ctx, s.ozonAccounts)
	})
}

func (s *Service) OzonToday(ctx context.Context, force bool) (domain.TodaySummary, Result) {
	return resolve(s, ctx, KeyOzonToday, force, domain.EmptyTodaySummary, func(ctx context.Context) (domain.TodaySummary, error) {
		return s.ozon.Today(ctx, s.ozonAccounts)
	})
}

// Assemble builds the unified view model. Each marketplace section is
// resolved independently: one side failing never blanks the other.
func (s *Service) Assemble(ctx context.Context, force bool) domain.DashboardView {
	return domain.DashboardView{
		WB:          s.wbSection(ctx, force),
		Ozon:        s.ozonSection(ctx, force),
		GeneratedAt: time.Now(),
	}
}

func (s *Service) wbSection(ctx context.Context, force bool) domain.MarketplaceSection {
	if len(s.wbTokens) == 0 {
		return errorSection(marketplace.ErrMissingCredentials.Error())
	}
	stocks, stocksRes := s.WBStocks(ctx, force)
	today, todayRes := s.WBToday(ctx, force)
	return buildSection(stocks, today, stocksRes, todayRes)
}

func (s *Service) ozonSection(ctx context.Context, force bool) domain.MarketplaceSection {
	if len(s.ozonAccounts) == 0 {
		return errorSection(marketplace.ErrMissingCredentials.Error())
	}
	stocks, stocksRes := s.OzonStocks(ctx, force)
	today, todayRes := s.OzonToday(ctx, force)
	return buildSection(stocks, today, stocksRes, todayRes)
}

// resolve runs one metric through the cache with the full failure
// policy: rate limits fall back to a stale cache read, hard failures
// fall back to the persistent snapshot, and only when no saved data
// exists does the caller see an error marker.
func resolve[T any](s *Service, ctx context.Context, key string, force bool, empty func() T, computeFn func(context.Context) (T, error)) (T, Result) {
	value, err := s.cache.GetOrCompute(key, s.ttl, force, func() (any, error) {
		computed, err := computeFn(ctx)
		if err != nil {
			return nil, err
		}
		s.fallback.Save(ctx, key, computed)
		return computed, nil
	})
	if err == nil {
		if typed, ok := value.(T); ok {
			return typed, Result{Status: domain.SectionOK}
		}
		// A foreign value under our key means a key collision; do not
		// render it.
		log.Printf("[dashboard] WARN: unexpected cached type for key=%s", key)
		return empty(), Result{Status: domain.SectionError, Warning: "cache entry corrupted"}
	}

	if errors.Is(err, marketplace.ErrRateLimited) {
		log.Printf("[dashboard] WARN: rate limited key=%s", key)
		if stale, ok := s.cache.Peek(key, true); ok {
			if typed, ok := stale.(T); ok {
				return typed, Result{Status: domain.SectionStale, Warning: "rate limited, showing cached data"}
			}
		}
		snapshot := empty()
		if s.fallback.Load(ctx, key, &snapshot) {
			return snapshot, Result{Status: domain.SectionStale, Warning: "rate limited, showing last saved data"}
		}
		return empty(), Result{Status: domain.SectionError, Warning: "rate limited, no saved data"}
	}

	log.Printf("[dashboard] WARN: compute failed key=%s: %v", key, err)
	snapshot := empty()
	if s.fallback.Load(ctx, key, &snapshot) {
		return snapshot, Result{Status: domain.SectionStale, Warning: "upstream unavailable, showing last saved data"}
	}
	return empty(), Result{Status: domain.SectionError, Warning: err.Error()}
}

func buildSection(stocks domain.StockSummary, today domain.TodaySummary, stocksRes Result, todayRes Result) domain.MarketplaceSection {
	return domain.MarketplaceSection{
		Status:  worstStatus(stocksRes.Status, todayRes.Status),
		Warning: joinWarnings(stocksRes.Warning, todayRes.Warning),
		Stocks:  stocks,
		Today:   today,
	}
}

func errorSection(warning string) domain.MarketplaceSection {
	return domain.MarketplaceSection{
		Status:  domain.SectionError,
		Warning: warning,
		Stocks:  domain.EmptyStockSummary(),
		Today:   domain.EmptyTodaySummary(),
	}
}

func worstStatus(a string, b string) string {
	rank := func(s string) int {
		switch s {
		case domain.SectionError:
			return 2
		case domain.SectionStale:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func joinWarnings(warnings ...string) string {
	kept := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if w != "" && !contains(kept, w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "; ")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
