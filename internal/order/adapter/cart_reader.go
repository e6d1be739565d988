package adapter

import (
	"context"

	cartservice "github.com/pharmakart/storefront/internal/cart/service"
	"github.com/pharmakart/storefront/internal/order/service"
)

// CartReader adapts the cart service to the order workflow's read port.
type CartReader struct {
	carts *cartservice.CartService
}

func NewCartReader(carts *cartservice.CartService) *CartReader {
	return &CartReader{carts: carts}
}

func (a *CartReader) GetCart(ctx context.Context, userID string) ([]service.CartEntry, error) {
	cart, err := a.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]service.CartEntry, 0, len(cart.Items))
	for _, item := range cart.Items {
		entries = append(entries, service.CartEntry{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return entries, nil
}
