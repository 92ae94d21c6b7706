package ledger

import (
	"tillbook/internal/core/apperror"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

// ReturnRequest is what the operator asked to return from one sale.
type ReturnRequest struct {
	Lines   []ReturnRequestLine
	Comment string
}

// ReturnRequestLine requests a quantity of one sale line key.
type ReturnRequestLine struct {
	ProductRef string
	Quantity   types.Quantity
}

// BuildReturn validates a return request against the resolved view of the
// sale and builds the return draft. Requested quantities are clamped to the
// returnable remainder; lines clamped to nothing are dropped. A request whose
// total refund comes out to zero is rejected, there is nothing to return.
//
// Prices on the draft are frozen from the sale lines. The caller persists the
// draft; this function never touches storage.
func BuildReturn(sale *transaction.Transaction, resolved []ReturnableLine, req ReturnRequest) (*transaction.Transaction, error) {
	if len(req.Lines) == 0 {
		return nil, apperror.NewNothingToReturn(sale.Code)
	}

	byRef := make(map[string]*ReturnableLine, len(resolved))
	for i := range resolved {
		byRef[resolved[i].ProductRef] = &resolved[i]
	}

	saleLineByRef := make(map[string]*transaction.Line, len(sale.Lines))
	for i := range sale.Lines {
		if _, ok := saleLineByRef[sale.Lines[i].ProductRef]; !ok {
			saleLineByRef[sale.Lines[i].ProductRef] = &sale.Lines[i]
		}
	}

	draft := transaction.NewReturn(sale)
	draft.Comment = req.Comment

	seen := make(map[string]bool, len(req.Lines))
	for _, rl := range req.Lines {
		if rl.Quantity.IsNegative() {
			return nil, apperror.NewValidation("return quantity cannot be negative").
				WithDetail("product_ref", rl.ProductRef)
		}
		if rl.Quantity.IsZero() {
			continue
		}
		if seen[rl.ProductRef] {
			return nil, apperror.NewValidation("duplicate return line").
				WithDetail("product_ref", rl.ProductRef)
		}
		seen[rl.ProductRef] = true

		target, ok := byRef[rl.ProductRef]
		if !ok {
			return nil, apperror.NewValidation("product was not sold on this sale").
				WithDetail("sale_code", sale.Code).
				WithDetail("product_ref", rl.ProductRef)
		}

		qty := rl.Quantity.Min(target.MaxReturnable)
		if qty.IsZero() {
			continue
		}

		src := saleLineByRef[rl.ProductRef]
		draft.AddReturnLine(
			sale.Code,
			src.ProductID,
			target.ProductRef,
			target.ProductName,
			target.UnitPrice,
			qty,
			target.DiscountRate,
		)
	}

	if len(draft.Lines) == 0 || draft.RefundTotal().IsZero() {
		return nil, apperror.NewNothingToReturn(sale.Code)
	}

	return draft, nil
}
