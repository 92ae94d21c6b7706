// Package customer provides the Customer catalog: the account holders of the
// store ledger.
package customer

import (
	"context"
	"regexp"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/types"
)

// Pre-compiled regex patterns for validation
var (
	phoneRE = regexp.MustCompile(`^\+?[\d\s\-()]{5,20}$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Customer represents a ledger account holder.
type Customer struct {
	entity.Catalog

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Balance is the authoritative stored balance: positive means the
	// customer owes the store. Updated only inside the posting transaction
	// of each committed document, never recomputed in place. The ledger
	// view cross-checks it and reports mismatches.
	Balance types.Money `db:"balance" json:"balance"`

	// DebtLimit caps the balance a credit sale may produce. Nil falls back
	// to the store-wide default; a default of nil means unlimited.
	DebtLimit *types.Money `db:"debt_limit" json:"debtLimit,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(code, name),
		Balance: types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Phone != nil && *c.Phone != "" && !phoneRE.MatchString(*c.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.DebtLimit != nil && c.DebtLimit.IsNegative() {
		return apperror.NewValidation("debt limit cannot be negative").
			WithDetail("field", "debtLimit")
	}

	return nil
}

// HasDebt returns true when the customer owes the store.
func (c *Customer) HasDebt() bool {
	return c.Balance.IsPositive()
}
