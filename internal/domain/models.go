package domain

import "time"

// StockRecord is the canonical per-warehouse stock row both marketplace
// clients normalize their raw payloads into.
type StockRecord struct {
	SKU           string `json:"sku"`
	Warehouse     string `json:"warehouse"`
	Available     int    `json:"available"`
	InTransitTo   int    `json:"in_transit_to"`
	InTransitFrom int    `json:"in_transit_from"`
}

// OrderEvent is one order or sale occurrence. ID is unique per event
// (WB srid, Ozon posting number + offer id) and used for deduplication.
type OrderEvent struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	OccurredAt time.Time `json:"occurred_at"`
	Cancelled  bool      `json:"cancelled"`
	Region     string    `json:"region"`
	Warehouse  string    `json:"warehouse"`
}

type NamedCount struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type TransitCount struct {
	To   int `json:"to"`
	From int `json:"from"`
}

// StockSummary is the aggregate stock view for one marketplace across
// all of its accounts.
type StockSummary struct {
	Total              int                     `json:"total"`
	TotalInTransitTo   int                     `json:"total_in_transit_to"`
	TotalInTransitFrom int                     `json:"total_in_transit_from"`
	Warehouses         []NamedCount            `json:"warehouses"`
	SKUs               []NamedCount            `json:"skus"`
	SKUWarehouses      map[string][]NamedCount `json:"sku_warehouses,omitempty"`
	SKUTransit         map[string]TransitCount `json:"sku_transit,omitempty"`
}

// OrderDetail is one row of per-SKU order detail shown in tooltips.
type OrderDetail struct {
	Time      string `json:"time"`
	Region    string `json:"region"`
	Warehouse string `json:"warehouse"`
}

// TodaySummary holds today's order/sale counters for one marketplace.
type TodaySummary struct {
	Ordered          int                      `json:"ordered"`
	Purchased        int                      `json:"purchased"`
	OrderedSKUs      []NamedCount             `json:"ordered_skus"`
	PurchasedSKUs    []NamedCount             `json:"purchased_skus"`
	OrderedDetails   map[string][]OrderDetail `json:"ordered_details,omitempty"`
	PurchasedDetails map[string][]OrderDetail `json:"purchased_details,omitempty"`
}

// Section statuses tell the rendering layer whether a marketplace
// section carries live data, stale fallback data, or nothing at all.
const (
	SectionOK    = "ok"
	SectionStale = "stale"
	SectionError = "error"
)

// MarketplaceSection is one marketplace's half of the dashboard. When
// Status is SectionError the numeric payloads are zero-valued
// placeholders, never fabricated data.
type MarketplaceSection struct {
	Status  string       `json:"status"`
	Warning string       `json:"warning,omitempty"`
	Stocks  StockSummary `json:"stocks"`
	Today   TodaySummary `json:"today"`
}

// DashboardView is the unified view model consumed by the rendering
// layer. The two marketplaces never merge numerically.
type DashboardView struct {
	WB          MarketplaceSection `json:"wb"`
	Ozon        MarketplaceSection `json:"ozon"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// EmptyStockSummary returns a zero-valued summary with non-nil slices
// so JSON output keeps a stable shape on the error path.
func EmptyStockSummary() StockSummary {
	return StockSummary{
		Warehouses: []NamedCount{},
		SKUs:       []NamedCount{},
	}
}

func EmptyTodaySummary() TodaySummary {
	return TodaySummary{
		OrderedSKUs:   []NamedCount{},
		PurchasedSKUs: []NamedCount{},
	}
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}
