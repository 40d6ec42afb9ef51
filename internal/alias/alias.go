// Package alias maps raw marketplace SKUs to the human-readable names
// shown on the dashboard and defines the order they are displayed in.
package alias

import (
	"sort"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

// unknownOrder places names without a configured position after every
// configured one.
const unknownOrder = 10000

// fallbackName is returned when a raw identifier cannot be rendered.
const fallbackName = "SKU"

type Resolver struct {
	names map[string]string
	order map[string]int
}

// New builds a resolver from an alias map and a preferred display
// order expressed in display names.
func New(names map[string]string, order []string) *Resolver {
	idx := make(map[string]int, len(order))
	for i, name := range order {
		idx[name] = i
	}
	return &Resolver{names: names, order: idx}
}

// Default returns the resolver with the production alias table.
func Default() *Resolver {
	return New(map[string]string{
		"VALERY-PACK-2-NO-SMELL": "Пакеты по 2 шт.",
		"VALERY-PACK-5-NO-SMELL": "Пакеты по 5 шт.",
		"VALERY-PACK-8-NO-SMELL": "Пакеты по 8 шт.",
		"VALERY-CARDS-1":         "Карточки для фотосессии",
		"GOOD-CONDITION-1":       "Кронштейны для кондиционера",
	}, []string{
		"Кронштейны для кондиционера",
		"Карточки для фотосессии",
		"Пакеты по 8 шт.",
		"Пакеты по 5 шт.",
		"Пакеты по 2 шт.",
	})
}

// Resolve returns the configured display name for a raw SKU, or the
// SKU itself when no alias is configured. An empty identifier maps to
// a fixed placeholder.
func (r *Resolver) Resolve(raw string) string {
	if raw == "" {
		return fallbackName
	}
	if name, ok := r.names[raw]; ok {
		return name
	}
	return raw
}

// OrderKey returns the display position of a name, or a large sentinel
// for names outside the configured order.
func (r *Resolver) OrderKey(name string) int {
	if idx, ok := r.order[name]; ok {
		return idx
	}
	return unknownOrder
}

// SortPairs orders (name, qty) pairs by configured display position,
// breaking ties lexicographically. The sort is stable and pure.
func (r *Resolver) SortPairs(pairs []domain.NamedCount) []domain.NamedCount {
	out := make([]domain.NamedCount, len(pairs))
	copy(out, pairs)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := r.OrderKey(out[i].Name), r.OrderKey(out[j].Name)
		if ki != kj {
			return ki < kj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
