package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	d "github.com/pharmakart/storefront/internal/order/domain"
	"github.com/pharmakart/storefront/internal/order/engine"
	s "github.com/pharmakart/storefront/internal/order/service"
)

// OrderPlacer is the slice of the order service the handler needs.
type OrderPlacer interface {
	SnapshotCart(ctx context.Context, userID string) ([]d.CartLine, float64, error)
	PlaceOrder(ctx context.Context, req s.PlaceOrderRequest) (*s.PlaceOrderResult, error)
}

// OrderReader reads engine-owned orders for history and confirmation views.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID, userID string) (*d.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*d.Order, error)
	CustomerStats(ctx context.Context, userID string) (*d.CustomerStats, error)
}

type OrderHandler struct {
	orders  OrderPlacer
	reader  OrderReader
	timeout time.Duration
}

func NewOrderHandler(orders OrderPlacer, reader OrderReader, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		reader:  reader,
		timeout: timeout,
	}
}

type PlaceOrderRequestDTO struct {
	AddressID     string  `json:"address_id"`
	CartSessionID string  `json:"cart_session_id,omitempty"`
	ShippingFee   float64 `json:"shipping_fee"`
}

type PlaceOrderResponseDTO struct {
	OrderID         string  `json:"order_id"`
	TotalAmount     float64 `json:"total_amount"`
	ConfirmationURL string  `json:"confirmation_url"`
}

// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to place an order")
		return
	}

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ShippingFee < 0 {
		respondError(w, http.StatusBadRequest, "invalid_shipping_fee", "shipping_fee must not be negative")
		return
	}

	lines, _, err := h.orders.SnapshotCart(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, s.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "empty_cart", s.ErrEmptyCart.Error())
		case errors.Is(err, s.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		case errors.Is(err, s.ErrProductUnavailable):
			respondError(w, http.StatusConflict, "product_unavailable", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "could not resolve cart")
		}
		return
	}

	result, err := h.orders.PlaceOrder(ctx, s.PlaceOrderRequest{
		UserID:        userID,
		AddressID:     req.AddressID,
		CartSessionID: req.CartSessionID,
		ShippingFee:   req.ShippingFee,
		Items:         lines,
	})
	if err != nil {
		handlePlacementError(w, err)
		return
	}

	confirmationURL := fmt.Sprintf("/orders/%s/confirmation", result.OrderID)
	w.Header().Set("Location", confirmationURL)
	respondJSON(w, http.StatusCreated, PlaceOrderResponseDTO{
		OrderID:         result.OrderID,
		TotalAmount:     result.Total,
		ConfirmationURL: confirmationURL,
	})
}

func handlePlacementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, s.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, s.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, s.ErrMissingAddress):
		respondError(w, http.StatusBadRequest, "missing_address", err.Error())
	case errors.Is(err, s.ErrPlacementInFlight):
		respondError(w, http.StatusConflict, "placement_in_flight", err.Error())
	default:
		var placementErr *s.PlacementError
		if errors.As(err, &placementErr) {
			// the engine-supplied message goes to the user verbatim
			respondError(w, http.StatusBadGateway, "order_placement_failed", placementErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

type OrderItemDTO struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

type OrderResponseDTO struct {
	ID            string         `json:"id"`
	TotalAmount   float64        `json:"total_amount"`
	ShippingFee   float64        `json:"shipping_fee"`
	AddressID     string         `json:"address_id"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	Items         []OrderItemDTO `json:"items"`
	CreatedAt     string         `json:"created_at"`
}

// GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	orders, err := h.reader.ListOrders(ctx, userID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "engine_unavailable", "could not load orders")
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	order, err := h.reader.GetOrder(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, engine.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusBadGateway, "engine_unavailable", "could not load order")
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

// GET /api/v1/account/stats
func (h *OrderHandler) CustomerStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	stats, err := h.reader.CustomerStats(ctx, userID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "engine_unavailable", "could not load customer stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func convertOrder(o *d.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return OrderResponseDTO{
		ID:            o.ID,
		TotalAmount:   o.TotalAmount,
		ShippingFee:   o.ShippingFee,
		AddressID:     o.AddressID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
