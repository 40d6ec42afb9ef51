// Package wb talks to the Wildberries statistics API and normalizes
// its stock and order feeds.
package wb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace"
)

const defaultBaseURL = "https://statistics-api.wildberries.ru"

// stocksDateFrom is a distant date: the stocks endpoint wants a lower
// bound but always reports the current state.
const stocksDateFrom = "2023-01-01"

type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
}

// NewClient builds a WB statistics API client. Naive timestamps in WB
// payloads are interpreted in loc, which must match the seller's
// account timezone.
func NewClient(baseURL string, loc *time.Location) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		loc:        loc,
	}
}

type stockItem struct {
	Quantity        marketplace.FlexInt `json:"quantity"`
	InWayToClient   marketplace.FlexInt `json:"inWayToClient"`
	InWayFromClient marketplace.FlexInt `json:"inWayFromClient"`
	WarehouseName   string              `json:"warehouseName"`
	SupplierArticle string              `json:"supplierArticle"`
}

type eventItem struct {
	Date            string `json:"date"`
	SRID            string `json:"srid"`
	SupplierArticle string `json:"supplierArticle"`
	WarehouseName   string `json:"warehouseName"`
	OblastOkrugName string `json:"oblastOkrugName"`
	IsCancel        bool   `json:"isCancel"`
}

// Stocks fetches the current stock state for one token.
func (c *Client) Stocks(ctx context.Context, token string) ([]domain.StockRecord, error) {
	body, err := c.get(ctx, token, "/api/v1/supplier/stocks", stocksDateFrom)
	if err != nil {
		return nil, err
	}

	var items []stockItem
	if err := decodeListOrKeyed(body, &items, "stocks"); err != nil {
		return nil, &marketplace.ValidationError{Op: "wb stocks", Err: err}
	}

	records := make([]domain.StockRecord, 0, len(items))
	for _, it := range items {
		records = append(records, domain.StockRecord{
			SKU:           it.SupplierArticle,
			Warehouse:     it.WarehouseName,
			Available:     it.Quantity.Int(),
			InTransitTo:   it.InWayToClient.Int(),
			InTransitFrom: it.InWayFromClient.Int(),
		})
	}
	return records, nil
}

// Orders fetches order events since the given date.
func (c *Client) Orders(ctx context.Context, token string, since time.Time) ([]domain.OrderEvent, error) {
	return c.events(ctx, token, "/api/v1/supplier/orders", "orders", since)
}

// Sales fetches sale (buyout) events since the given date.
func (c *Client) Sales(ctx context.Context, token string, since time.Time) ([]domain.OrderEvent, error) {
	return c.events(ctx, token, "/api/v1/supplier/sales", "sales", since)
}

func (c *Client) events(ctx context.Context, token string, path string, key string, since time.Time) ([]domain.OrderEvent, error) {
	body, err := c.get(ctx, token, path, since.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var items []eventItem
	if err := decodeListOrKeyed(body, &items, key); err != nil {
		return nil, &marketplace.ValidationError{Op: "wb " + key, Err: err}
	}

	events := make([]domain.OrderEvent, 0, len(items))
	for _, it := range items {
		events = append(events, domain.OrderEvent{
			ID:         it.SRID,
			SKU:        it.SupplierArticle,
			OccurredAt: c.parseTime(it.Date),
			Cancelled:  it.IsCancel,
			Region:     it.OblastOkrugName,
			Warehouse:  it.WarehouseName,
		})
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, token string, path string, dateFrom string) ([]byte, error) {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, url.Values{"dateFrom": {dateFrom}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &marketplace.TransportError{Op: "wb " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, marketplace.NewStatusError("wb "+path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// decodeListOrKeyed accepts the two shapes WB has been seen returning:
// a bare JSON array, or an object with the array under a known key.
func decodeListOrKeyed(body []byte, dst any, key string) error {
	if err := json.Unmarshal(body, dst); err == nil {
		return nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return err
	}
	inner, ok := wrapped[key]
	if !ok {
		return fmt.Errorf("missing %q key", key)
	}
	return json.Unmarshal(inner, dst)
}

// parseTime handles both offset-qualified and naive WB timestamps,
// treating naive ones as local to the configured timezone.
func (c *Client) parseTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, c.loc); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, c.loc); err == nil {
		return t
	}
	return time.Time{}
}
