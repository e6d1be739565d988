package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// CartLine is one resolved line of the cart at order time. UnitPrice and
// StockOnHand are snapshots taken when the cart was resolved and may be
// stale by the time the order is placed.
type CartLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	StockOnHand int32   `json:"stock_on_hand"`
}

func (l CartLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Order is owned by the external order engine; this service only reads it
// back for history and confirmation views.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	TotalAmount   float64       `json:"total_amount"`
	ShippingFee   float64       `json:"shipping_fee"`
	AddressID     string        `json:"address_id"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []OrderItem   `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
}

type OrderItem struct {
	OrderID     string  `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "open"
	SessionStatusConverted SessionStatus = "converted"
)

// CartSession correlates a client cart with backend state across requests.
// Once converted it is never reopened.
type CartSession struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ConvertedAt *time.Time    `json:"converted_at,omitempty"`
}

// CustomerStats is computed server-side by a stored procedure; the client
// only unmarshals the result.
type CustomerStats struct {
	OrderCount  int64      `json:"order_count"`
	TotalSpent  float64    `json:"total_spent"`
	LastOrderAt *time.Time `json:"last_order_at,omitempty"`
}
