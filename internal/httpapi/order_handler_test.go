package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	d "github.com/pharmakart/storefront/internal/order/domain"
	"github.com/pharmakart/storefront/internal/order/engine"
	s "github.com/pharmakart/storefront/internal/order/service"
)

type orderPlacerMock struct {
	lines       []d.CartLine
	snapshotErr error
	result      *s.PlaceOrderResult
	placeErr    error
	lastReq     s.PlaceOrderRequest
}

func (m *orderPlacerMock) SnapshotCart(ctx context.Context, userID string) ([]d.CartLine, float64, error) {
	if m.snapshotErr != nil {
		return nil, 0, m.snapshotErr
	}
	var subtotal float64
	for _, l := range m.lines {
		subtotal += l.LineTotal()
	}
	return m.lines, subtotal, nil
}

func (m *orderPlacerMock) PlaceOrder(ctx context.Context, req s.PlaceOrderRequest) (*s.PlaceOrderResult, error) {
	m.lastReq = req
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	return m.result, nil
}

type orderReaderMock struct {
	order  *d.Order
	orders []*d.Order
	stats  *d.CustomerStats
	err    error
}

func (m *orderReaderMock) GetOrder(ctx context.Context, orderID, userID string) (*d.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *orderReaderMock) ListOrders(ctx context.Context, userID string) ([]*d.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *orderReaderMock) CustomerStats(ctx context.Context, userID string) (*d.CustomerStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	var request *http.Request
	if body != nil {
		request = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		request = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		ctx := context.WithValue(request.Context(), userIDKey, userID)
		request = request.WithContext(ctx)
	}
	return request
}

func TestPlaceOrder_Success(t *testing.T) {
	placer := &orderPlacerMock{
		lines: []d.CartLine{
			{ProductID: 1, ProductName: "Paracetamol 500mg", Quantity: 2, UnitPrice: 25.50},
		},
		result: &s.PlaceOrderResult{OrderID: "ord-001", Total: 101.0},
	}
	handler := NewOrderHandler(placer, &orderReaderMock{}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1", ShippingFee: 50})
	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/", body, "user-1"))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response PlaceOrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.OrderID != "ord-001" {
		t.Errorf("Expected order_id 'ord-001', got '%s'", response.OrderID)
	}
	if response.ConfirmationURL != "/orders/ord-001/confirmation" {
		t.Errorf("Unexpected confirmation_url '%s'", response.ConfirmationURL)
	}
	if got := recorder.Header().Get("Location"); got != "/orders/ord-001/confirmation" {
		t.Errorf("Unexpected Location header '%s'", got)
	}
	if placer.lastReq.AddressID != "addr-1" {
		t.Errorf("Expected address 'addr-1' passed through, got '%s'", placer.lastReq.AddressID)
	}
	if len(placer.lastReq.Items) != 1 {
		t.Errorf("Expected cart snapshot passed through, got %d items", len(placer.lastReq.Items))
	}
}

func TestPlaceOrder_Unauthorized(t *testing.T) {
	handler := NewOrderHandler(&orderPlacerMock{}, &orderReaderMock{}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1"})
	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/", body, ""))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestPlaceOrder_InvalidJSON(t *testing.T) {
	handler := NewOrderHandler(&orderPlacerMock{}, &orderReaderMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/", []byte("not json"), "user-1"))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	placer := &orderPlacerMock{snapshotErr: s.ErrEmptyCart}
	handler := NewOrderHandler(placer, &orderReaderMock{}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1"})
	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/", body, "user-1"))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "empty_cart" {
		t.Errorf("Expected error code 'empty_cart', got '%s'", response.Code)
	}
}

func TestPlaceOrder_SnapshotErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedHTTP int
		expectedCode string
	}{
		{"InvalidQuantity", fmt.Errorf("%w: 0 for product 1", s.ErrInvalidQuantity), http.StatusBadRequest, "invalid_quantity"},
		{"ProductUnavailable", fmt.Errorf("%w: product 99", s.ErrProductUnavailable), http.StatusConflict, "product_unavailable"},
		{"BackendFailure", errors.New("mongo down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placer := &orderPlacerMock{snapshotErr: tt.err}
			handler := NewOrderHandler(placer, &orderReaderMock{}, 5*time.Second)

			body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1"})
			recorder := httptest.NewRecorder()
			handler.PlaceOrder(recorder, authedRequest("POST", "/", body, "user-1"))

			if recorder.Code != tt.expectedHTTP {
				t.Errorf("Expected status code %d, got %d", tt.expectedHTTP, recorder.Code)
			}

			var response ErrorResponse
			json.NewDecoder(recorder.Body).Decode(&response)
			if response.Code != tt.expectedCode {
				t.Errorf("Expected error code '%s', got '%s'", tt.expectedCode, response.Code)
			}
			if tt.expectedCode == "product_unavailable" && response.Error != "product is no longer available: product 99" {
				t.Errorf("Expected snapshot message passed through, got '%s'", response.Error)
			}
		})
	}
}

func TestPlaceOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedHTTP int
		expectedCode string
	}{
		{"MissingAddress", s.ErrMissingAddress, http.StatusBadRequest, "missing_address"},
		{"PlacementInFlight", s.ErrPlacementInFlight, http.StatusConflict, "placement_in_flight"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placer := &orderPlacerMock{
				lines:    []d.CartLine{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
				placeErr: tt.err,
			}
			handler := NewOrderHandler(placer, &orderReaderMock{}, 5*time.Second)

			body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1"})
			recorder := httptest.NewRecorder()
			handler.PlaceOrder(recorder, authedRequest("POST", "/", body, "user-1"))

			if recorder.Code != tt.expectedHTTP {
				t.Errorf("Expected status code %d, got %d", tt.expectedHTTP, recorder.Code)
			}

			var response ErrorResponse
			json.NewDecoder(recorder.Body).Decode(&response)
			if response.Code != tt.expectedCode {
				t.Errorf("Expected error code '%s', got '%s'", tt.expectedCode, response.Code)
			}
		})
	}
}

func TestPlaceOrder_EngineFailureMessageVerbatim(t *testing.T) {
	placer := &orderPlacerMock{
		lines:    []d.CartLine{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
		placeErr: s.NewPlacementError("Address not found", nil),
	}
	handler := NewOrderHandler(placer, &orderReaderMock{}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1"})
	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/", body, "user-1"))

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Error != "Address not found" {
		t.Errorf("Expected engine message passed through verbatim, got '%s'", response.Error)
	}
	if response.Code != "order_placement_failed" {
		t.Errorf("Expected error code 'order_placement_failed', got '%s'", response.Code)
	}
}

func TestPlaceOrder_NegativeShippingFee(t *testing.T) {
	handler := NewOrderHandler(&orderPlacerMock{}, &orderReaderMock{}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{AddressID: "addr-1", ShippingFee: -10})
	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/", body, "user-1"))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestGetOrder_Success(t *testing.T) {
	reader := &orderReaderMock{
		order: &d.Order{
			ID:          "ord-001",
			UserID:      "user-1",
			TotalAmount: 281,
			Status:      d.OrderStatusConfirmed,
			CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Items: []d.OrderItem{
				{ProductID: 1, ProductName: "Paracetamol 500mg", Quantity: 2, UnitPrice: 25.50, LineTotal: 51},
			},
		},
	}
	handler := NewOrderHandler(&orderPlacerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authedRequest("GET", "/ord-001", nil, "user-1")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_id", "ord-001")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.ID != "ord-001" {
		t.Errorf("Expected id 'ord-001', got '%s'", response.ID)
	}
	if response.Status != "confirmed" {
		t.Errorf("Expected status 'confirmed', got '%s'", response.Status)
	}
	if len(response.Items) != 1 || response.Items[0].LineTotal != 51 {
		t.Errorf("Unexpected items: %+v", response.Items)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	reader := &orderReaderMock{err: engine.ErrOrderNotFound}
	handler := NewOrderHandler(&orderPlacerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authedRequest("GET", "/nope", nil, "user-1")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_id", "nope")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestListOrders_Success(t *testing.T) {
	reader := &orderReaderMock{
		orders: []*d.Order{
			{ID: "ord-002", CreatedAt: time.Now()},
			{ID: "ord-001", CreatedAt: time.Now().Add(-time.Hour)},
		},
	}
	handler := NewOrderHandler(&orderPlacerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, authedRequest("GET", "/", nil, "user-1"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response) != 2 || response[0].ID != "ord-002" {
		t.Errorf("Unexpected orders: %+v", response)
	}
}

func TestListOrders_EngineDown(t *testing.T) {
	reader := &orderReaderMock{err: errors.New("connection refused")}
	handler := NewOrderHandler(&orderPlacerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, authedRequest("GET", "/", nil, "user-1"))

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}
}

func TestCustomerStats_Success(t *testing.T) {
	reader := &orderReaderMock{
		stats: &d.CustomerStats{OrderCount: 7, TotalSpent: 1234.5},
	}
	handler := NewOrderHandler(&orderPlacerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.CustomerStats(recorder, authedRequest("GET", "/", nil, "user-1"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response d.CustomerStats
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.OrderCount != 7 {
		t.Errorf("Expected order_count 7, got %d", response.OrderCount)
	}
}
