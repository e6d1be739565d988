package adapter

import (
	"context"

	catalogrepo "github.com/pharmakart/storefront/internal/catalog/repository"
	"github.com/pharmakart/storefront/internal/order/service"
)

// CatalogReader adapts the catalog repository to the order workflow's
// product-lookup port.
type CatalogReader struct {
	catalog catalogrepo.CatalogRepository
}

func NewCatalogReader(catalog catalogrepo.CatalogRepository) *CatalogReader {
	return &CatalogReader{catalog: catalog}
}

func (a *CatalogReader) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]service.ProductInfo, error) {
	products, err := a.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	infos := make(map[int64]service.ProductInfo, len(products))
	for id, p := range products {
		infos[id] = service.ProductInfo{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
			Stock: p.StockQuantity,
		}
	}
	return infos, nil
}
