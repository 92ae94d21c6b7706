package customer

import (
	"context"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByPhone retrieves a customer by phone.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// GetForUpdate retrieves a customer with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Customer, error)

	// AdjustBalance atomically adds delta to the stored balance. Called only
	// from inside the posting transaction of a committed document.
	AdjustBalance(ctx context.Context, id id.ID, delta types.Money) error
}
