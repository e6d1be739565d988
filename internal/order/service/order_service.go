package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	d "github.com/pharmakart/storefront/internal/order/domain"
	"github.com/pharmakart/storefront/internal/order/engine"
	"github.com/pharmakart/storefront/internal/order/publisher"
)

// SessionStore marks server-tracked cart sessions as converted. The write
// must be idempotent: re-marking an already converted session is not an
// error.
type SessionStore interface {
	MarkSessionConverted(ctx context.Context, sessionID, userID string, at time.Time) error
}

// EventPublisher announces successfully placed orders.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event publisher.OrderPlacedEvent) error
}

type OrderService struct {
	engine   engine.OrderEngine
	sessions SessionStore
	events   EventPublisher
	cart     CartReader
	catalog  CatalogReader
	logger   *zap.Logger

	inFlight sync.Map // user id -> placement in progress
}

func NewOrderService(
	eng engine.OrderEngine,
	sessions SessionStore,
	events EventPublisher,
	cart CartReader,
	catalog CatalogReader,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		engine:   eng,
		sessions: sessions,
		events:   events,
		cart:     cart,
		catalog:  catalog,
		logger:   logger,
	}
}

// PlaceOrderRequest carries all state the placement needs explicitly; there
// is no ambient cart or auth lookup behind it.
type PlaceOrderRequest struct {
	UserID        string
	AddressID     string
	CartSessionID string // optional, converted best-effort on success
	ShippingFee   float64
	Items         []d.CartLine
}

type PlaceOrderResult struct {
	OrderID string
	Total   float64
}

// PlaceOrder runs the order placement workflow: local precondition checks,
// one call to the transactional order engine, then best-effort bookkeeping.
// Exactly one engine call is attempted per invocation; there is no retry.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if req.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if req.AddressID == "" {
		return nil, ErrMissingAddress
	}

	// One placement in flight per user. A second submit while the first is
	// outstanding is rejected without touching the engine. Two independent
	// frontends racing the same cart are left to the engine's atomicity.
	if _, loaded := s.inFlight.LoadOrStore(req.UserID, struct{}{}); loaded {
		return nil, ErrPlacementInFlight
	}
	defer s.inFlight.Delete(req.UserID)

	var subtotal float64
	for _, line := range req.Items {
		subtotal += line.LineTotal()
	}
	total := subtotal + req.ShippingFee

	result, err := s.engine.PlaceOrder(ctx, engine.PlacementRequest{
		UserID:      req.UserID,
		Total:       total,
		ShippingFee: req.ShippingFee,
		AddressID:   req.AddressID,
	})
	if err != nil {
		return nil, &PlacementError{Message: genericPlacementMessage, cause: err}
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = genericPlacementMessage
		}
		return nil, &PlacementError{Message: msg}
	}

	// The order is durably placed from here on. Session conversion and the
	// placed event are best-effort: failures are logged, never surfaced,
	// and never reverse the order.
	s.convertSession(ctx, req.CartSessionID, req.UserID)
	s.publishPlaced(ctx, result.OrderID, req, total)

	s.logger.Info("order placed",
		zap.String("order_id", result.OrderID),
		zap.String("user_id", req.UserID),
		zap.Float64("total_amount", total))

	return &PlaceOrderResult{OrderID: result.OrderID, Total: total}, nil
}

func (s *OrderService) convertSession(ctx context.Context, sessionID, userID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessions.MarkSessionConverted(ctx, sessionID, userID, time.Now()); err != nil {
		s.logger.Error("cart session conversion failed",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

func (s *OrderService) publishPlaced(ctx context.Context, orderID string, req PlaceOrderRequest, total float64) {
	event := publisher.OrderPlacedEvent{
		OrderID:     orderID,
		UserID:      req.UserID,
		TotalAmount: total,
		ShippingFee: req.ShippingFee,
		AddressID:   req.AddressID,
		Items:       req.Items,
		PlacedAt:    time.Now(),
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("order placed event publish failed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
