package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

const Topic = "order-events"

// OrderPlacedEvent is published after the engine has durably created an
// order. Consumers (cart clearing, notifications) must tolerate replays.
type OrderPlacedEvent struct {
	OrderID     string       `json:"order_id"`
	UserID      string       `json:"user_id"`
	TotalAmount float64      `json:"total_amount"`
	ShippingFee float64      `json:"shipping_fee"`
	AddressID   string       `json:"address_id"`
	Items       []d.CartLine `json:"items"`
	PlacedAt    time.Time    `json:"placed_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers ...string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w}
}

func (p *Producer) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.placed")},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
