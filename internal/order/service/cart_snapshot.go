package service

import (
	"context"
	"fmt"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

type CartReader interface {
	GetCart(ctx context.Context, userID string) ([]CartEntry, error)
}

type CartEntry struct {
	ProductID int64
	Quantity  int32
}

type CatalogReader interface {
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]ProductInfo, error)
}

type ProductInfo struct {
	ID    int64
	Name  string
	Price float64
	Stock int32
}

// SnapshotCart resolves the user's server-tracked cart into cart lines with
// unit price and stock captured at resolution time. The snapshots may be
// stale by the time the order is placed; the engine is the authority on
// both. Returns the display subtotal alongside the lines.
func (s *OrderService) SnapshotCart(ctx context.Context, userID string) ([]d.CartLine, float64, error) {
	entries, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch cart: %w", err)
	}
	if len(entries) == 0 {
		return nil, 0, ErrEmptyCart
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: %d for product %d", ErrInvalidQuantity, e.Quantity, e.ProductID)
		}
		ids = append(ids, e.ProductID)
	}

	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve products: %w", err)
	}

	lines := make([]d.CartLine, 0, len(entries))
	var subtotal float64
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: product %d", ErrProductUnavailable, e.ProductID)
		}
		line := d.CartLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    e.Quantity,
			UnitPrice:   p.Price,
			StockOnHand: p.Stock,
		}
		lines = append(lines, line)
		subtotal += line.LineTotal()
	}

	return lines, subtotal, nil
}
