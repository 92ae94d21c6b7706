// Package ledger implements the reconciliation core of the back office: it
// classifies transactions into debt and credit, resolves what is still
// returnable on a sale, computes running customer balances and builds return
// documents with frozen prices. Everything here is pure and operates on
// already-loaded documents; services own the I/O around it.
package ledger

import (
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

// DisplayKind is the presentation category of a ledger row.
type DisplayKind string

const (
	DisplaySale       DisplayKind = "sale"
	DisplayCreditSale DisplayKind = "credit_sale"
	DisplayPayment    DisplayKind = "payment"
	DisplayDebit      DisplayKind = "debit"
	DisplayReturn     DisplayKind = "return"
)

// Entry is the classification of one transaction for ledger display.
//
// Settled sales (cash, card) appear with equal debt and credit so the row is
// visible but nets to zero. A return is negative debt, not credit: it undoes
// a charge rather than recording money received.
type Entry struct {
	Debt    types.Money
	Credit  types.Money
	Display DisplayKind

	// Flagged marks rows classified by the fallback rule. An unknown kind
	// is shown as a settled sale (zero net effect) rather than silently
	// shifting the balance.
	Flagged bool
}

// Net returns debt − credit, the row's contribution to the running balance.
func (e Entry) Net() types.Money {
	return e.Debt.Sub(e.Credit)
}

// Classify maps a transaction to its debt and credit columns.
func Classify(t *transaction.Transaction) Entry {
	switch t.Kind {
	case transaction.KindPayment:
		return Entry{Debt: types.Zero(), Credit: t.Total, Display: DisplayPayment}

	case transaction.KindCreditSale:
		return Entry{Debt: t.Total, Credit: types.Zero(), Display: DisplayCreditSale}

	case transaction.KindCashSale, transaction.KindCardSale:
		return Entry{Debt: t.Total, Credit: t.Total, Display: DisplaySale}

	case transaction.KindManualDebit:
		return Entry{Debt: t.Total, Credit: types.Zero(), Display: DisplayDebit}

	case transaction.KindReturn:
		// Total is negative on returns, so the debt column carries a
		// negative amount and the running balance decreases.
		return Entry{Debt: t.Total, Credit: types.Zero(), Display: DisplayReturn}

	default:
		return Entry{Debt: t.Total, Credit: t.Total, Display: DisplaySale, Flagged: true}
	}
}
