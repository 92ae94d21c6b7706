package ledger

import (
	"tillbook/internal/core/apperror"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

// ReturnIndex maps (sale code, product ref) to the quantity already returned.
// Built once per resolution from the return documents; lookups are map reads,
// so resolving a sale never rescans the transaction list.
type ReturnIndex struct {
	returned map[string]map[string]types.Quantity
}

// NewReturnIndex indexes the return lines of the given transactions.
// Non-return documents are skipped, so the full ledger read set can be passed
// as-is. Building is order-independent: quantities accumulate per key.
func NewReturnIndex(txns []*transaction.Transaction) ReturnIndex {
	idx := ReturnIndex{returned: make(map[string]map[string]types.Quantity)}
	for _, t := range txns {
		if t.Kind != transaction.KindReturn || t.DeletionMark {
			continue
		}
		for _, line := range t.Lines {
			if line.OriginalSaleCode == nil || *line.OriginalSaleCode == "" {
				continue
			}
			bySale := idx.returned[*line.OriginalSaleCode]
			if bySale == nil {
				bySale = make(map[string]types.Quantity)
				idx.returned[*line.OriginalSaleCode] = bySale
			}
			bySale[line.ProductRef] += line.Quantity
		}
	}
	return idx
}

// Returned reports the quantity already returned against one sale line key.
func (idx ReturnIndex) Returned(saleCode, productRef string) types.Quantity {
	return idx.returned[saleCode][productRef]
}

// ReturnableLine is the per-line view of what is still returnable on a sale.
type ReturnableLine struct {
	ProductRef  string      `json:"productRef"`
	ProductName string      `json:"productName"`
	UnitPrice   types.Money `json:"unitPrice"`

	// DiscountRate is the frozen discount from the sale line; refunds are
	// computed with it, not the product's current price.
	DiscountRate types.Money `json:"discountRate"`

	Sold            types.Quantity `json:"sold"`
	AlreadyReturned types.Quantity `json:"alreadyReturned"`

	// MaxReturnable = max(0, sold − alreadyReturned). Clamped at zero when
	// a post-sale edit shrank the sold quantity below what was already
	// returned.
	MaxReturnable types.Quantity `json:"maxReturnable"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// ResolveReturnableLines computes the returnable view of a sale against the
// given return index. Sale lines sharing a product ref are merged (their sold
// quantities accumulate); rows keep first-seen line order. Idempotent: the
// result depends only on the sale and the index.
func ResolveReturnableLines(sale *transaction.Transaction, idx ReturnIndex) []ReturnableLine {
	merged := make(map[string]int)
	out := make([]ReturnableLine, 0, len(sale.Lines))

	for _, line := range sale.Lines {
		if pos, ok := merged[line.ProductRef]; ok {
			out[pos].Sold += line.Quantity
			// Same ref with diverging price or discount means the textual
			// join key collapsed two distinct items. Flag, never guess.
			if !out[pos].UnitPrice.Equal(line.UnitPrice) || !out[pos].DiscountRate.Equal(line.DiscountRate) {
				out[pos].Warnings = appendWarning(out[pos].Warnings, Warning{
					Code:    apperror.CodeAmbiguousJoinKey,
					Message: "sale lines with the same product reference carry different prices",
					Details: map[string]any{"product_ref": line.ProductRef},
				})
			}
			continue
		}

		merged[line.ProductRef] = len(out)
		out = append(out, ReturnableLine{
			ProductRef:   line.ProductRef,
			ProductName:  line.ProductName,
			UnitPrice:    line.UnitPrice,
			DiscountRate: line.DiscountRate,
			Sold:         line.Quantity,
		})
	}

	for i := range out {
		rl := &out[i]
		rl.AlreadyReturned = idx.Returned(sale.Code, rl.ProductRef)

		remaining := rl.Sold - rl.AlreadyReturned
		if remaining < 0 {
			// More returned than the sale now records. The clamp keeps
			// further returns blocked; the warning surfaces the mismatch
			// for manual review instead of auto-correcting history.
			remaining = 0
			rl.Warnings = appendWarning(rl.Warnings, Warning{
				Code:    apperror.CodeOverReturn,
				Message: "already returned quantity exceeds the sold quantity",
				Details: map[string]any{
					"sale_code":        sale.Code,
					"product_ref":      rl.ProductRef,
					"sold":             rl.Sold.String(),
					"already_returned": rl.AlreadyReturned.String(),
				},
			})
		}
		rl.MaxReturnable = remaining
	}

	return out
}

func appendWarning(ws []Warning, w Warning) []Warning {
	for _, existing := range ws {
		if existing.Code == w.Code {
			return ws
		}
	}
	return append(ws, w)
}
