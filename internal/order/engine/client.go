package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

// Client talks to the hosted database's auto-generated REST interface.
// Stored procedures are addressed by name under /rpc/, table reads are
// plain GETs with filter query parameters.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name:        "order-engine",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// PlaceOrder invokes the transactional place_order procedure. Atomicity of
// order row creation, order item creation and stock decrement is the
// procedure's contract; this call only marshals parameters and interprets
// the result record.
func (c *Client) PlaceOrder(ctx context.Context, req PlacementRequest) (*PlacementResult, error) {
	params := map[string]interface{}{
		"p_user_id":      req.UserID,
		"p_total_amount": req.Total,
		"p_shipping_fee": req.ShippingFee,
		"p_address_id":   req.AddressID,
	}

	body, err := c.call(ctx, http.MethodPost, "/rpc/place_order", params)
	if err != nil {
		return nil, fmt.Errorf("place_order rpc: %w", err)
	}

	var result PlacementResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode place_order result: %w", err)
	}
	return &result, nil
}

// CustomerStats invokes the get_customer_stats procedure.
func (c *Client) CustomerStats(ctx context.Context, userID string) (*d.CustomerStats, error) {
	params := map[string]interface{}{"p_user_id": userID}

	body, err := c.call(ctx, http.MethodPost, "/rpc/get_customer_stats", params)
	if err != nil {
		return nil, fmt.Errorf("get_customer_stats rpc: %w", err)
	}

	var stats d.CustomerStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("decode customer stats: %w", err)
	}
	return &stats, nil
}

// orderRow is the wire shape of an engine-owned order with its items
// embedded via the order_items relation.
type orderRow struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	TotalAmount float64        `json:"total_amount"`
	ShippingFee float64        `json:"shipping_fee"`
	AddressID   string         `json:"address_id"`
	Status      string         `json:"status"`
	PayStatus   string         `json:"payment_status"`
	CreatedAt   time.Time      `json:"created_at"`
	Items       []orderItemRow `json:"order_items"`
}

type orderItemRow struct {
	OrderID     string  `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

func (c *Client) ListOrders(ctx context.Context, userID string) ([]*d.Order, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("select", "*,order_items(*)")
	query.Set("order", "created_at.desc")

	body, err := c.call(ctx, http.MethodGet, "/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var rows []orderRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]*d.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].toDomain())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID, userID string) (*d.Order, error) {
	query := url.Values{}
	query.Set("id", "eq."+orderID)
	query.Set("user_id", "eq."+userID)
	query.Set("select", "*,order_items(*)")

	body, err := c.call(ctx, http.MethodGet, "/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	var rows []orderRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrOrderNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *orderRow) toDomain() *d.Order {
	items := make([]d.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, d.OrderItem{
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return &d.Order{
		ID:            r.ID,
		UserID:        r.UserID,
		TotalAmount:   r.TotalAmount,
		ShippingFee:   r.ShippingFee,
		AddressID:     r.AddressID,
		Status:        d.OrderStatus(r.Status),
		PaymentStatus: d.PaymentStatus(r.PayStatus),
		Items:         items,
		CreatedAt:     r.CreatedAt,
	}
}

// call performs one HTTP exchange through the circuit breaker and returns
// the response body. Non-2xx responses count as failures for the breaker.
func (c *Client) call(ctx context.Context, method, path string, params interface{}) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if params != nil {
			encoded, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("encode rpc params: %w", err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		if params != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("engine unreachable: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("engine rejected request: status %d: %s", resp.StatusCode, body)
		}
		return body, nil
	})
}
