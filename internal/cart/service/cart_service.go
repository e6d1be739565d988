package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pharmakart/storefront/internal/cart/cache"
	"github.com/pharmakart/storefront/internal/cart/domain"
	"github.com/pharmakart/storefront/internal/cart/repository"
)

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	logger *zap.Logger
	sfg    singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, logger *zap.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetCart returns the user's cart, reading through the cache. A missing
// cart resolves to an empty one rather than an error.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.String("user_id", userID), zap.Error(err))
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrCartNotFound) {
				return &domain.Cart{
					UserID:    userID,
					Items:     nil,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}, nil
			}
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				s.logger.Warn("cart cache set failed", zap.String("user_id", userID), zap.Error(errSet))
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int32) error {
	if err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int64) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
