// Package returns provides the returned-quantity accumulation register.
package returns

import (
	"context"
	"time"

	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// Repository defines operations for the returns register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.ReturnMovement) error

	// DeleteMovementsByRecorder removes all movements for a document version
	// Used during unposting or re-posting
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.ReturnMovement, error)

	// Balance operations

	// GetBalance returns the returned quantity for one sale line key
	GetBalance(ctx context.Context, saleCode, productRef string) (entity.ReturnBalance, error)

	// GetBalanceForUpdate returns the balance with a row lock. The posting
	// transaction of a return locks every affected key before re-checking
	// the over-return invariant.
	GetBalanceForUpdate(ctx context.Context, saleCode, productRef string) (entity.ReturnBalance, error)

	// GetBalancesBySale returns all returned quantities against one sale
	GetBalancesBySale(ctx context.Context, saleCode string) ([]entity.ReturnBalance, error)

	// Maintenance

	// RecalculateBalances rebuilds the balance table from movements
	RecalculateBalances(ctx context.Context, saleCode *string) error
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	SaleCode   *string
	ProductRef *string
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// SoldQuantity is the sold remainder one return consumes against.
type SoldQuantity struct {
	SaleCode   string
	ProductRef string
	Sold       types.Quantity
	Requested  types.Quantity
}
