package marketplace

import (
	"testing"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

var msk = time.FixedZone("MSK", 3*3600)

func TestBuildTodayCounts(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, msk)
	orders := []domain.OrderEvent{
		{ID: "o1", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 9, 30, 0, 0, msk), Region: "Москва", Warehouse: "Kazan"},
		{ID: "o2", SKU: "RAW-B", OccurredAt: time.Date(2026, 3, 1, 11, 5, 0, 0, msk)},
	}
	sales := []domain.OrderEvent{
		{ID: "s1", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, msk)},
	}

	s := BuildToday(orders, sales, now, msk, testResolver())
	if s.Ordered != 2 || s.Purchased != 1 {
		t.Fatalf("expected 2 ordered / 1 purchased, got %d/%d", s.Ordered, s.Purchased)
	}

	details := s.OrderedDetails["Alpha"]
	if len(details) != 1 || details[0].Time != "09:30" || details[0].Region != "Москва" {
		t.Fatalf("unexpected detail row: %+v", details)
	}
}

func TestBuildTodayDeduplicatesByID(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, msk)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, msk)
	orders := []domain.OrderEvent{
		{ID: "dup", SKU: "RAW-A", OccurredAt: at},
		{ID: "dup", SKU: "RAW-A", OccurredAt: at},
		{ID: "dup", SKU: "RAW-A", OccurredAt: at},
	}

	s := BuildToday(orders, nil, now, msk, testResolver())
	if s.Ordered != 1 {
		t.Fatalf("duplicate event ids must count once, got %d", s.Ordered)
	}
}

func TestBuildTodayEmptyIDNotDeduplicated(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, msk)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, msk)
	orders := []domain.OrderEvent{
		{SKU: "RAW-A", OccurredAt: at},
		{SKU: "RAW-A", OccurredAt: at},
	}

	s := BuildToday(orders, nil, now, msk, testResolver())
	if s.Ordered != 2 {
		t.Fatalf("events without ids are distinct, got %d", s.Ordered)
	}
}

func TestBuildTodaySkipsCancelled(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, msk)
	orders := []domain.OrderEvent{
		{ID: "o1", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, msk)},
		{ID: "o2", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 11, 0, 0, 0, msk), Cancelled: true},
	}

	s := BuildToday(orders, nil, now, msk, testResolver())
	if s.Ordered != 1 {
		t.Fatalf("cancelled events must be excluded, got %d", s.Ordered)
	}
}

func TestBuildTodayDayBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, msk)
	orders := []domain.OrderEvent{
		// 23:59 yesterday local.
		{ID: "y", SKU: "RAW-A", OccurredAt: time.Date(2026, 2, 28, 23, 59, 0, 0, msk)},
		// Midnight today, inclusive.
		{ID: "m", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, msk)},
		// Midnight tomorrow, exclusive.
		{ID: "t", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 2, 0, 0, 0, 0, msk)},
		// UTC instant that is already today in MSK.
		{ID: "u", SKU: "RAW-A", OccurredAt: time.Date(2026, 2, 28, 22, 30, 0, 0, time.UTC)},
	}

	s := BuildToday(orders, nil, now, msk, testResolver())
	if s.Ordered != 2 {
		t.Fatalf("expected [midnight, next midnight) in local time, got %d", s.Ordered)
	}
}

func TestBuildTodayDetailsSorted(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, msk)
	orders := []domain.OrderEvent{
		{ID: "a", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 14, 10, 0, 0, msk)},
		{ID: "b", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 8, 45, 0, 0, msk)},
		{ID: "c", SKU: "RAW-A", OccurredAt: time.Date(2026, 3, 1, 11, 0, 0, 0, msk)},
	}

	s := BuildToday(orders, nil, now, msk, testResolver())
	rows := s.OrderedDetails["Alpha"]
	want := []string{"08:45", "11:00", "14:10"}
	for i, ts := range want {
		if rows[i].Time != ts {
			t.Fatalf("position %d: expected %s, got %s", i, ts, rows[i].Time)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC), msk)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, msk)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
