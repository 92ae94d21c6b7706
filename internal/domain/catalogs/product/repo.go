package product

import (
	"context"

	"tillbook/internal/core/id"
	"tillbook/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindByStockCode retrieves a product by stock code.
	FindByStockCode(ctx context.Context, stockCode string) (*Product, error)

	// FindByBarcode retrieves a product by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// FindByName retrieves products matching a name exactly. More than one
	// match means the name is an ambiguous join key for legacy rows.
	FindByName(ctx context.Context, name string) ([]*Product, error)

	// GetForUpdate retrieves a product with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)
}
