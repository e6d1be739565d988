package service

import (
	"context"
	"sync"
	"time"

	d "github.com/pharmakart/storefront/internal/order/domain"
	"github.com/pharmakart/storefront/internal/order/engine"
	"github.com/pharmakart/storefront/internal/order/publisher"
)

// MockEngine implements engine.OrderEngine for testing
type MockEngine struct {
	mu       sync.Mutex
	calls    int
	lastReq  engine.PlacementRequest
	result   *engine.PlacementResult
	err      error
	entered  chan struct{} // closed when PlaceOrder is reached, if set
	release  chan struct{} // PlaceOrder blocks on this until closed, if set
	enterOne sync.Once
}

func (m *MockEngine) PlaceOrder(_ context.Context, req engine.PlacementRequest) (*engine.PlacementResult, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	m.mu.Unlock()

	if m.entered != nil {
		m.enterOne.Do(func() { close(m.entered) })
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockEngine) LastRequest() engine.PlacementRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

func (m *MockEngine) GetOrder(context.Context, string, string) (*d.Order, error) {
	return nil, engine.ErrOrderNotFound
}

func (m *MockEngine) ListOrders(context.Context, string) ([]*d.Order, error) {
	return nil, nil
}

func (m *MockEngine) CustomerStats(context.Context, string) (*d.CustomerStats, error) {
	return nil, nil
}

// MockSessionStore implements SessionStore for testing
type MockSessionStore struct {
	mu       sync.Mutex
	calls    int
	lastID   string
	lastUser string
	err      error
}

func (m *MockSessionStore) MarkSessionConverted(_ context.Context, sessionID, userID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastID = sessionID
	m.lastUser = userID
	return m.err
}

// MockPublisher implements EventPublisher for testing
type MockPublisher struct {
	mu     sync.Mutex
	events []publisher.OrderPlacedEvent
	err    error
}

func (m *MockPublisher) PublishOrderPlaced(_ context.Context, event publisher.OrderPlacedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

// MockCartReader implements CartReader for testing
type MockCartReader struct {
	entries []CartEntry
	err     error
}

func (m *MockCartReader) GetCart(context.Context, string) ([]CartEntry, error) {
	return m.entries, m.err
}

// MockCatalogReader implements CatalogReader for testing
type MockCatalogReader struct {
	products map[int64]ProductInfo
	err      error
}

func (m *MockCatalogReader) ProductsByIDs(context.Context, []int64) (map[int64]ProductInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}
