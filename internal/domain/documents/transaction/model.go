// Package transaction provides the ledger transaction document. All six
// transaction kinds share one document type with kind-specific validation.
package transaction

import (
	"context"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/posting"
)

// Kind discriminates ledger transaction documents.
type Kind string

const (
	KindCashSale    Kind = "cash_sale"
	KindCardSale    Kind = "card_sale"
	KindCreditSale  Kind = "credit_sale"
	KindPayment     Kind = "payment"
	KindManualDebit Kind = "manual_debit"
	KindReturn      Kind = "return"
)

// Valid reports whether k is a known transaction kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCashSale, KindCardSale, KindCreditSale, KindPayment, KindManualDebit, KindReturn:
		return true
	}
	return false
}

// IsSale reports whether k is one of the sale kinds.
func (k Kind) IsSale() bool {
	return k == KindCashSale || k == KindCardSale || k == KindCreditSale
}

// HasLines reports whether documents of this kind carry priced line items.
// Payments and manual debits are amount-only.
func (k Kind) HasLines() bool {
	return k.IsSale() || k == KindReturn
}

// Transaction is a ledger transaction document. The ledger is append-only:
// committed transactions are corrected by compensating documents (returns),
// not destructive edits, with two supervisor-gated exceptions (payment
// deletion and sale line resave).
type Transaction struct {
	entity.Document

	Kind Kind `db:"kind" json:"kind"`

	// CustomerID is required for credit sales, payments and manual debits.
	// Cash and card sales may be anonymous walk-ins.
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// Total is the document amount. Computed from lines for sales and
	// returns, set directly for payments and manual debits. Negative for
	// returns.
	Total types.Money `db:"total" json:"total"`

	// Table part: priced line items (sales and returns only)
	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is a priced line item of a sale or return.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// ProductID links back to the catalog when known. Imported legacy rows
	// may carry only the textual fields.
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`

	// ProductRef is the join key linking return lines to sale lines: the
	// product stock code when one exists, otherwise the product name.
	ProductRef  string `db:"product_ref" json:"productRef"`
	ProductName string `db:"product_name" json:"productName"`

	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// DiscountRate is a percentage in [0, 100].
	DiscountRate types.Money `db:"discount_rate" json:"discountRate"`

	// Amount is the committed line amount, rounded at this boundary:
	// unitPrice × quantity × (1 − discountRate/100).
	Amount types.Money `db:"amount" json:"amount"`

	// OriginalSaleCode is set on return lines only and references the sale
	// document the line compensates. A return spanning several sales
	// carries it per line.
	OriginalSaleCode *string `db:"original_sale_code" json:"originalSaleCode,omitempty"`
}

// New creates a transaction document of the given kind.
func New(kind Kind, customerID *id.ID) *Transaction {
	return &Transaction{
		Document:   entity.NewDocument(),
		Kind:       kind,
		CustomerID: customerID,
		Total:      types.Zero(),
		Lines:      make([]Line, 0),
	}
}

// NewReturn creates a return draft compensating the given sale. The caller
// adds resolved lines; prices are frozen from the original sale.
func NewReturn(sale *Transaction) *Transaction {
	return New(KindReturn, sale.CustomerID)
}

// AddLine adds a sale line and recalculates totals.
func (t *Transaction) AddLine(productID *id.ID, productRef, productName string, unitPrice types.Money, qty types.Quantity, discountRate types.Money) {
	t.Lines = append(t.Lines, Line{
		LineID:       id.New(),
		LineNo:       len(t.Lines) + 1,
		ProductID:    productID,
		ProductRef:   productRef,
		ProductName:  productName,
		UnitPrice:    unitPrice,
		Quantity:     qty,
		DiscountRate: discountRate,
		Amount:       types.LineAmount(unitPrice, qty, discountRate),
	})
	t.RecalculateTotals()
}

// AddReturnLine adds a return line referencing the original sale by code.
// Price and discount are the frozen values from the sale line.
func (t *Transaction) AddReturnLine(saleCode string, productID *id.ID, productRef, productName string, unitPrice types.Money, qty types.Quantity, discountRate types.Money) {
	code := saleCode
	t.Lines = append(t.Lines, Line{
		LineID:           id.New(),
		LineNo:           len(t.Lines) + 1,
		ProductID:        productID,
		ProductRef:       productRef,
		ProductName:      productName,
		UnitPrice:        unitPrice,
		Quantity:         qty,
		DiscountRate:     discountRate,
		Amount:           types.LineAmount(unitPrice, qty, discountRate),
		OriginalSaleCode: &code,
	})
	t.RecalculateTotals()
}

// RecalculateTotals recomputes the document total from its lines.
// Returns carry a negative total (the refund owed back).
func (t *Transaction) RecalculateTotals() {
	if !t.Kind.HasLines() {
		return
	}
	sum := types.Zero()
	for _, line := range t.Lines {
		sum = sum.Add(line.Amount)
	}
	if t.Kind == KindReturn {
		sum = sum.Neg()
	}
	t.Total = sum
}

// BalanceEffect returns the document's net effect on the customer's stored
// balance: positive increases debt. Settled sales (cash, card) pay on the
// spot and contribute nothing; a return's negative total reduces debt.
func (t *Transaction) BalanceEffect() types.Money {
	switch t.Kind {
	case KindCreditSale, KindManualDebit:
		return t.Total
	case KindPayment:
		return t.Total.Neg()
	case KindReturn:
		return t.Total
	default:
		return types.Zero()
	}
}

// RefundTotal returns the positive refund amount of a return document.
func (t *Transaction) RefundTotal() types.Money {
	return t.Total.Neg()
}

// Validate implements entity.Validatable.
func (t *Transaction) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if !t.Kind.Valid() {
		return apperror.NewValidation("unknown transaction kind").
			WithDetail("field", "kind").
			WithDetail("kind", string(t.Kind))
	}

	switch t.Kind {
	case KindPayment, KindManualDebit:
		if t.CustomerID == nil || id.IsNil(*t.CustomerID) {
			return apperror.NewValidation("customer is required").
				WithDetail("field", "customerId")
		}
		if len(t.Lines) > 0 {
			return apperror.NewValidation("amount-only transaction cannot carry lines").
				WithDetail("field", "lines")
		}
		if !t.Total.IsPositive() {
			return apperror.NewValidation("amount must be positive").
				WithDetail("field", "total")
		}
		return nil

	case KindCreditSale:
		if t.CustomerID == nil || id.IsNil(*t.CustomerID) {
			return apperror.NewValidation("customer is required").
				WithDetail("field", "customerId")
		}
	}

	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range t.Lines {
		if line.ProductRef == "" {
			return apperror.NewValidation("product reference is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.DiscountRate.IsNegative() || line.DiscountRate.GreaterThan(types.Hundred) {
			return apperror.NewValidation("discount rate must be between 0 and 100").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if t.Kind == KindReturn {
			if line.OriginalSaleCode == nil || *line.OriginalSaleCode == "" {
				return apperror.NewValidation("return line must reference the original sale").
					WithDetail("field", "lines").
					WithDetail("lineNo", i+1)
			}
		} else if line.OriginalSaleCode != nil {
			return apperror.NewValidation("only return lines may reference a sale").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable implementation ---
// GetID, GetPostedVersion, IsPosted, CanPost inherited from entity.Document.

func (t *Transaction) GetDocumentType() string { return "Transaction" }

// GenerateMovements describes the register effect of this document. Only
// returns touch the returned-quantity register; the customer balance is a
// stored aggregate maintained by the services, not a register.
func (t *Transaction) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	if t.Kind != KindReturn {
		return movements, nil
	}

	newVersion := t.PostedVersion + 1
	for _, line := range t.Lines {
		movements.AddReturn(entity.NewReturnMovement(
			t.ID,
			t.GetDocumentType(),
			newVersion,
			t.Date,
			*line.OriginalSaleCode,
			line.ProductRef,
			line.Quantity,
		))
	}
	return movements, nil
}

var _ posting.Postable = (*Transaction)(nil)
