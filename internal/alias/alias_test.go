package alias

import (
	"testing"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

func TestResolve(t *testing.T) {
	r := Default()

	if got := r.Resolve("VALERY-CARDS-1"); got != "Карточки для фотосессии" {
		t.Fatalf("expected configured alias, got %q", got)
	}
	if got := r.Resolve("UNKNOWN-123"); got != "UNKNOWN-123" {
		t.Fatalf("expected passthrough for unknown sku, got %q", got)
	}
	if got := r.Resolve(""); got != "SKU" {
		t.Fatalf("expected placeholder for empty sku, got %q", got)
	}
}

func TestOrderKey(t *testing.T) {
	r := New(map[string]string{}, []string{"first", "second"})

	if got := r.OrderKey("first"); got != 0 {
		t.Fatalf("expected position 0, got %d", got)
	}
	if got := r.OrderKey("second"); got != 1 {
		t.Fatalf("expected position 1, got %d", got)
	}
	if got := r.OrderKey("nowhere"); got != unknownOrder {
		t.Fatalf("expected sentinel for unconfigured name, got %d", got)
	}
}

func TestSortPairs(t *testing.T) {
	r := New(map[string]string{}, []string{"b", "a"})

	pairs := []domain.NamedCount{
		{Name: "zzz", Qty: 1},
		{Name: "a", Qty: 2},
		{Name: "mmm", Qty: 3},
		{Name: "b", Qty: 4},
	}
	sorted := r.SortPairs(pairs)

	want := []string{"b", "a", "mmm", "zzz"}
	for i, name := range want {
		if sorted[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, sorted[i].Name)
		}
	}

	// The input slice must stay untouched.
	if pairs[0].Name != "zzz" {
		t.Fatalf("input slice was mutated: %v", pairs)
	}
}

func TestSortPairsTieBreak(t *testing.T) {
	r := New(map[string]string{}, nil)

	sorted := r.SortPairs([]domain.NamedCount{
		{Name: "beta", Qty: 1},
		{Name: "alpha", Qty: 2},
	})
	if sorted[0].Name != "alpha" || sorted[1].Name != "beta" {
		t.Fatalf("expected lexicographic tie-break, got %v", sorted)
	}
}
