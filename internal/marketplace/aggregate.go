package marketplace

import (
	"github.com/Vafelkin/mp-dashboard/internal/alias"
	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

// StockAccumulator sums normalized stock records across warehouses,
// SKUs and accounts. Addition is commutative, so the order accounts
// are processed in never changes the totals.
type StockAccumulator struct {
	aliases *alias.Resolver

	total     int
	totalTo   int
	totalFrom int

	warehouses    map[string]int
	skus          map[string]int
	skuWarehouses map[string]map[string]int
	skuTransit    map[string]domain.TransitCount
}

func NewStockAccumulator(aliases *alias.Resolver) *StockAccumulator {
	return &StockAccumulator{
		aliases:       aliases,
		warehouses:    make(map[string]int),
		skus:          make(map[string]int),
		skuWarehouses: make(map[string]map[string]int),
		skuTransit:    make(map[string]domain.TransitCount),
	}
}

// Add folds one record into the running totals. Negative quantities
// from malformed upstream rows count as zero.
func (a *StockAccumulator) Add(rec domain.StockRecord) {
	name := a.aliases.Resolve(rec.SKU)
	qty := clampNonNegative(rec.Available)
	to := clampNonNegative(rec.InTransitTo)
	from := clampNonNegative(rec.InTransitFrom)

	a.total += qty
	a.totalTo += to
	a.totalFrom += from

	a.warehouses[rec.Warehouse] += qty
	a.skus[name] += qty

	byWarehouse, ok := a.skuWarehouses[name]
	if !ok {
		byWarehouse = make(map[string]int)
		a.skuWarehouses[name] = byWarehouse
	}
	byWarehouse[rec.Warehouse] += qty

	if to > 0 || from > 0 {
		t := a.skuTransit[name]
		t.To += to
		t.From += from
		a.skuTransit[name] = t
	}
}

// Summary freezes the accumulator into the aggregate stock view:
// display-ordered lists, zero-quantity warehouse breakdown entries
// dropped.
func (a *StockAccumulator) Summary() domain.StockSummary {
	summary := domain.StockSummary{
		Total:              a.total,
		TotalInTransitTo:   a.totalTo,
		TotalInTransitFrom: a.totalFrom,
		Warehouses:         a.aliases.SortPairs(pairsFromMap(a.warehouses)),
		SKUs:               a.aliases.SortPairs(pairsFromMap(a.skus)),
	}

	if len(a.skuWarehouses) > 0 {
		summary.SKUWarehouses = make(map[string][]domain.NamedCount, len(a.skuWarehouses))
		for name, byWarehouse := range a.skuWarehouses {
			pairs := make([]domain.NamedCount, 0, len(byWarehouse))
			for warehouse, qty := range byWarehouse {
				if qty == 0 {
					continue
				}
				pairs = append(pairs, domain.NamedCount{Name: warehouse, Qty: qty})
			}
			if len(pairs) == 0 {
				continue
			}
			summary.SKUWarehouses[name] = a.aliases.SortPairs(pairs)
		}
	}

	if len(a.skuTransit) > 0 {
		summary.SKUTransit = make(map[string]domain.TransitCount, len(a.skuTransit))
		for name, t := range a.skuTransit {
			summary.SKUTransit[name] = t
		}
	}

	return summary
}

func pairsFromMap(m map[string]int) []domain.NamedCount {
	pairs := make([]domain.NamedCount, 0, len(m))
	for name, qty := range m {
		pairs = append(pairs, domain.NamedCount{Name: name, Qty: qty})
	}
	return pairs
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
