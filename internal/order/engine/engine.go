package engine

import (
	"context"
	"errors"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// PlacementRequest carries the pre-computed totals for the transactional
// place_order procedure. The engine recomputes nothing client-side: order
// creation, order item creation and stock decrement all happen inside the
// procedure, atomically.
type PlacementRequest struct {
	UserID      string
	Total       float64
	ShippingFee float64
	AddressID   string
}

// PlacementResult mirrors the procedure's result record. Known failures are
// reported through Success=false plus ErrorMessage, not via transport errors.
type PlacementResult struct {
	Success      bool   `json:"success"`
	OrderID      string `json:"order_id,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// OrderEngine is the boundary to the hosted database's RPC surface.
type OrderEngine interface {
	PlaceOrder(ctx context.Context, req PlacementRequest) (*PlacementResult, error)
	GetOrder(ctx context.Context, orderID, userID string) (*d.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*d.Order, error)
	CustomerStats(ctx context.Context, userID string) (*d.CustomerStats, error)
}
