package ledger

import (
	"testing"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

func saleDoc(kind transaction.Kind, total string) *transaction.Transaction {
	doc := transaction.New(kind, nil)
	doc.Total = types.MustMoney(total)
	return doc
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		kind    transaction.Kind
		total   string
		debt    string
		credit  string
		display DisplayKind
		flagged bool
	}{
		{"payment is pure credit", transaction.KindPayment, "150.00", "0", "150.00", DisplayPayment, false},
		{"credit sale is pure debt", transaction.KindCreditSale, "200.00", "200.00", "0", DisplayCreditSale, false},
		{"cash sale nets to zero", transaction.KindCashSale, "75.50", "75.50", "75.50", DisplaySale, false},
		{"card sale nets to zero", transaction.KindCardSale, "33.10", "33.10", "33.10", DisplaySale, false},
		{"manual debit is pure debt", transaction.KindManualDebit, "40.00", "40.00", "0", DisplayDebit, false},
		{"return is negative debt", transaction.KindReturn, "-25.00", "-25.00", "0", DisplayReturn, false},
		{"unknown kind falls back to settled sale", transaction.Kind("voucher"), "99.00", "99.00", "99.00", DisplaySale, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify(saleDoc(tt.kind, tt.total))

			if !e.Debt.Equal(types.MustMoney(tt.debt)) {
				t.Errorf("debt = %s, want %s", e.Debt, tt.debt)
			}
			if !e.Credit.Equal(types.MustMoney(tt.credit)) {
				t.Errorf("credit = %s, want %s", e.Credit, tt.credit)
			}
			if e.Display != tt.display {
				t.Errorf("display = %s, want %s", e.Display, tt.display)
			}
			if e.Flagged != tt.flagged {
				t.Errorf("flagged = %v, want %v", e.Flagged, tt.flagged)
			}
		})
	}
}

// The classifier's net effect and the balance effect applied at commit time
// must agree for every known kind, or the stored balance drifts from the
// recomputed ledger by construction.
func TestClassifyNetMatchesBalanceEffect(t *testing.T) {
	kinds := []transaction.Kind{
		transaction.KindCashSale,
		transaction.KindCardSale,
		transaction.KindCreditSale,
		transaction.KindPayment,
		transaction.KindManualDebit,
	}

	for _, kind := range kinds {
		doc := saleDoc(kind, "120.00")
		if got, want := Classify(doc).Net(), doc.BalanceEffect(); !got.Equal(want) {
			t.Errorf("%s: classifier net %s != balance effect %s", kind, got, want)
		}
	}

	ret := saleDoc(transaction.KindReturn, "-30.00")
	if got, want := Classify(ret).Net(), ret.BalanceEffect(); !got.Equal(want) {
		t.Errorf("return: classifier net %s != balance effect %s", got, want)
	}
}
