package repository

import (
	"context"
	"errors"

	"github.com/pharmakart/storefront/internal/cart/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// IndexEnsurer is implemented by repositories that manage their own
// indexes.
type IndexEnsurer interface {
	CreateIndexes(ctx context.Context) error
}

// CartRepository is defined by its consumers, not by the MongoDB
// implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID string, productID int64, quantity int32) error
	RemoveItem(ctx context.Context, userID string, productID int64) error
	DeleteCart(ctx context.Context, userID string) error
}
