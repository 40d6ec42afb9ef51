package marketplace

import (
	"sort"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/alias"
	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

// StartOfDay returns local midnight for the given instant.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// BuildToday folds raw order and sale events into today's counters.
// Upstream date filters are only advisory: every event is re-checked
// against the local calendar day. Cancelled events are discarded and
// duplicate event ids are counted once, keeping the first occurrence.
func BuildToday(orders []domain.OrderEvent, sales []domain.OrderEvent, now time.Time, loc *time.Location, aliases *alias.Resolver) domain.TodaySummary {
	dayStart := StartOfDay(now, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	orderedCounts, orderedDetails := foldEvents(orders, dayStart, dayEnd, loc, aliases)
	purchasedCounts, purchasedDetails := foldEvents(sales, dayStart, dayEnd, loc, aliases)

	summary := domain.TodaySummary{
		OrderedSKUs:   aliases.SortPairs(pairsFromMap(orderedCounts)),
		PurchasedSKUs: aliases.SortPairs(pairsFromMap(purchasedCounts)),
	}
	for _, qty := range orderedCounts {
		summary.Ordered += qty
	}
	for _, qty := range purchasedCounts {
		summary.Purchased += qty
	}
	if len(orderedDetails) > 0 {
		summary.OrderedDetails = orderedDetails
	}
	if len(purchasedDetails) > 0 {
		summary.PurchasedDetails = purchasedDetails
	}
	return summary
}

func foldEvents(events []domain.OrderEvent, dayStart time.Time, dayEnd time.Time, loc *time.Location, aliases *alias.Resolver) (map[string]int, map[string][]domain.OrderDetail) {
	counts := make(map[string]int)
	details := make(map[string][]domain.OrderDetail)
	seen := make(map[string]struct{}, len(events))

	for _, ev := range events {
		if ev.Cancelled {
			continue
		}
		local := ev.OccurredAt.In(loc)
		if local.Before(dayStart) || !local.Before(dayEnd) {
			continue
		}
		if ev.ID != "" {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
		}

		name := aliases.Resolve(ev.SKU)
		counts[name]++
		details[name] = append(details[name], domain.OrderDetail{
			Time:      local.Format("15:04"),
			Region:    ev.Region,
			Warehouse: ev.Warehouse,
		})
	}

	for name := range details {
		rows := details[name]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time < rows[j].Time })
	}
	return counts, details
}
