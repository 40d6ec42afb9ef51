// Package ozon talks to the Ozon seller API and normalizes its
// analytics stock and FBO posting feeds.
package ozon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
	"github.com/Vafelkin/mp-dashboard/internal/marketplace"
)

const defaultBaseURL = "https://api-seller.ozon.ru"

// stockChunkSize caps SKUs per analytics request per Ozon API limits.
const stockChunkSize = 100

// statusDelivered filters postings down to completed sales.
const statusDelivered = "delivered"

// Account is one Ozon seller credential pair plus its tracked SKUs.
type Account struct {
	ClientID string
	APIKey   string
	SKUs     []string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type analyticsStocksRequest struct {
	SKUs []int64 `json:"skus"`
}

type analyticsStockItem struct {
	OfferID             string              `json:"offer_id"`
	WarehouseName       string              `json:"warehouse_name"`
	AvailableStockCount marketplace.FlexInt `json:"available_stock_count"`
	TransitStockCount   marketplace.FlexInt `json:"transit_stock_count"`
	ReturnStockCount    marketplace.FlexInt `json:"return_from_customer_stock_count"`
}

// Stocks fetches stock analytics for the account's tracked SKUs,
// chunked to the API's per-request limit. SKUs that do not parse as
// integers are skipped: Ozon identifies products by numeric SKU.
func (c *Client) Stocks(ctx context.Context, account Account) ([]domain.StockRecord, error) {
	ids := make([]int64, 0, len(account.SKUs))
	for _, raw := range account.SKUs {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	records := make([]domain.StockRecord, 0, len(ids))
	for start := 0; start < len(ids); start += stockChunkSize {
		end := start + stockChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		body, err := c.post(ctx, account, "/v1/analytics/stocks", analyticsStocksRequest{SKUs: ids[start:end]})
		if err != nil {
			return nil, err
		}

		items, err := decodeAnalyticsItems(body)
		if err != nil {
			return nil, &marketplace.ValidationError{Op: "ozon stocks", Err: err}
		}
		for _, it := range items {
			records = append(records, domain.StockRecord{
				SKU:           it.OfferID,
				Warehouse:     it.WarehouseName,
				Available:     it.AvailableStockCount.Int(),
				InTransitTo:   it.TransitStockCount.Int(),
				InTransitFrom: it.ReturnStockCount.Int(),
			})
		}
	}
	return records, nil
}

type postingsRequest struct {
	Dir    string         `json:"dir"`
	Filter postingsFilter `json:"filter"`
	Limit  int            `json:"limit"`
}

type postingsFilter struct {
	Since  string `json:"since"`
	Status string `json:"status,omitempty"`
}

type posting struct {
	PostingNumber string `json:"posting_number"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	AnalyticsData struct {
		Region        string `json:"region"`
		WarehouseName string `json:"warehouse_name"`
	} `json:"analytics_data"`
	Products []struct {
		OfferID string `json:"offer_id"`
	} `json:"products"`
}

// Orders fetches all FBO postings created since the given instant.
func (c *Client) Orders(ctx context.Context, account Account, since time.Time) ([]domain.OrderEvent, error) {
	return c.postings(ctx, account, since, "")
}

// Sales fetches delivered FBO postings since the given instant.
func (c *Client) Sales(ctx context.Context, account Account, since time.Time) ([]domain.OrderEvent, error) {
	return c.postings(ctx, account, since, statusDelivered)
}

func (c *Client) postings(ctx context.Context, account Account, since time.Time, status string) ([]domain.OrderEvent, error) {
	body, err := c.post(ctx, account, "/v3/posting/fbo/list", postingsRequest{
		Dir:    "asc",
		Filter: postingsFilter{Since: since.Format(time.RFC3339), Status: status},
		Limit:  1000,
	})
	if err != nil {
		return nil, err
	}

	postings, err := decodePostings(body)
	if err != nil {
		return nil, &marketplace.ValidationError{Op: "ozon postings", Err: err}
	}

	var events []domain.OrderEvent
	for _, p := range postings {
		createdAt, _ := time.Parse(time.RFC3339, p.CreatedAt)
		for _, product := range p.Products {
			events = append(events, domain.OrderEvent{
				ID:         p.PostingNumber + ":" + product.OfferID,
				SKU:        product.OfferID,
				OccurredAt: createdAt,
				Cancelled:  p.Status == "cancelled",
				Region:     p.AnalyticsData.Region,
				Warehouse:  p.AnalyticsData.WarehouseName,
			})
		}
	}
	return events, nil
}

// decodeAnalyticsItems requires the items key: a payload without it is
// a shape mismatch, not an empty stock report.
func decodeAnalyticsItems(body []byte) ([]analyticsStockItem, error) {
	var resp struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp.Items)) == 0 {
		return nil, errors.New(`missing "items" key`)
	}

	var items []analyticsStockItem
	if err := json.Unmarshal(resp.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// decodePostings accepts both shapes the postings feed has returned:
// result as a bare array, or result as an object holding a postings
// array. Anything else is a shape mismatch and propagates as an error.
func decodePostings(body []byte) ([]posting, error) {
	var top struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, err
	}
	result := bytes.TrimSpace(top.Result)
	if len(result) == 0 {
		return nil, errors.New(`missing "result" key`)
	}

	if result[0] == '[' {
		var postings []posting
		if err := json.Unmarshal(result, &postings); err != nil {
			return nil, err
		}
		return postings, nil
	}

	var keyed struct {
		Postings json.RawMessage `json:"postings"`
	}
	if err := json.Unmarshal(result, &keyed); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(keyed.Postings)) == 0 {
		return nil, errors.New(`missing "postings" key under "result"`)
	}

	var postings []posting
	if err := json.Unmarshal(keyed.Postings, &postings); err != nil {
		return nil, err
	}
	return postings, nil
}

func (c *Client) post(ctx context.Context, account Account, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-Id", account.ClientID)
	req.Header.Set("Api-Key", account.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &marketplace.TransportError{Op: "ozon " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, marketplace.NewStatusError("ozon "+path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
