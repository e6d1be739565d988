package repository

import (
	"context"
	"errors"

	"github.com/pharmakart/storefront/internal/catalog/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type CatalogRepository interface {
	ListProducts(ctx context.Context, category string, limit, offset int) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	ListActiveBanners(ctx context.Context) ([]*domain.Banner, error)
	ListReviews(ctx context.Context, productID int64) ([]*domain.Review, error)
	AddReview(ctx context.Context, review *domain.Review) error
	RunMigrations(*Credentials) error
	Close() error
}
