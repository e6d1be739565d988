package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	c "github.com/pharmakart/storefront/internal/cart/cache"
	r "github.com/pharmakart/storefront/internal/cart/repository"
	"github.com/pharmakart/storefront/internal/order/publisher"
)

// Poller consumes order-placed events and clears the converted cart so it
// does not survive a successful order.
type Poller struct {
	repo   r.CartRepository
	cache  c.CartCache
	reader *kafka.Reader
	logger *zap.Logger
}

func NewPoller(repo r.CartRepository, cache c.CartCache, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  "storefront-cart-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo: repo, cache: cache, reader: reader, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Error("failed to read order event", zap.Error(err))
			}
			continue
		}

		p.handleMessage(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("failed to close kafka reader", zap.Error(err))
	}
}

func (p *Poller) handleMessage(ctx context.Context, payload []byte) {
	var event publisher.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		p.logger.Error("failed to parse order event", zap.Error(err))
		return
	}
	if event.UserID == "" {
		p.logger.Error("order event missing user_id", zap.String("order_id", event.OrderID))
		return
	}

	if err := p.repo.DeleteCart(ctx, event.UserID); err != nil && !errors.Is(err, r.ErrCartNotFound) {
		p.logger.Error("failed to delete cart after order",
			zap.String("user_id", event.UserID),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}

	if err := p.cache.Delete(ctx, event.UserID); err != nil {
		p.logger.Error("failed to delete cart cache after order",
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}
