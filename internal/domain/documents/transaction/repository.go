package transaction

import (
	"context"
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/domain"
)

// Repository defines operations for transaction documents.
type Repository interface {
	Create(ctx context.Context, doc *Transaction) error
	GetByID(ctx context.Context, docID id.ID) (*Transaction, error)
	GetByCode(ctx context.Context, code string) (*Transaction, error)
	Update(ctx context.Context, doc *Transaction) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Transaction, error)

	// ListByCustomer returns the customer's posted transactions with lines,
	// ordered by (date, id). This is the ledger read set.
	ListByCustomer(ctx context.Context, customerID id.ID) ([]*Transaction, error)

	// ListReturnsForSale returns all posted return documents carrying at
	// least one line referencing the given sale code, lines included.
	// Return validation always starts from this fresh read.
	ListReturnsForSale(ctx context.Context, saleCode string) ([]*Transaction, error)
}

// ListFilter for filtering transactions.
type ListFilter struct {
	domain.ListFilter

	Kind       *Kind
	CustomerID *id.ID
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
