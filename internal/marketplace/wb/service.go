package wb

import (
	"context"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/alias"
	"github.com/Vafelkin/mp-dashboard/internal/domain"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace"
)

// Fetcher is the client surface the aggregation service needs; tests
// substitute a fake.
type Fetcher interface {
	Stocks(ctx context.Context, token string) ([]domain.StockRecord, error)
	Orders(ctx context.Context, token string, since time.Time) ([]domain.OrderEvent, error)
	Sales(ctx context.Context, token string, since time.Time) ([]domain.OrderEvent, error)
}

// Service aggregates stock and today metrics across all configured WB
// tokens. One failing token fails the whole metric: partial sums would
// silently under-count.
type Service struct {
	client  Fetcher
	aliases *alias.Resolver
	loc     *time.Location
	now     func() time.Time
}

func NewService(client Fetcher, aliases *alias.Resolver, loc *time.Location) *Service {
	return &Service{
		client:  client,
		aliases: aliases,
		loc:     loc,
		now:     time.Now,
	}
}

func (s *Service) Stocks(ctx context.Context, tokens []string) (domain.StockSummary, error) {
	acc := marketplace.NewStockAccumulator(s.aliases)
	for _, token := range tokens {
		records, err := s.client.Stocks(ctx, token)
		if err != nil {
			return domain.StockSummary{}, err
		}
		for _, rec := range records {
			acc.Add(rec)
		}
	}
	return acc.Summary(), nil
}

func (s *Service) Today(ctx context.Context, tokens []string) (domain.TodaySummary, error) {
	now := s.now()
	since := marketplace.StartOfDay(now, s.loc)

	var orders, sales []domain.OrderEvent
	for _, token := range tokens {
		o, err := s.client.Orders(ctx, token, since)
		if err != nil {
			return domain.TodaySummary{}, err
		}
		orders = append(orders, o...)

		sl, err := s.client.Sales(ctx, token, since)
		if err != nil {
			return domain.TodaySummary{}, err
		}
		sales = append(sales, sl...)
	}

	return marketplace.BuildToday(orders, sales, now, s.loc, s.aliases), nil
}
