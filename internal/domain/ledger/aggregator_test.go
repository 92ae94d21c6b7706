package ledger

import (
	"testing"
	"time"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

func datedDoc(kind transaction.Kind, total string, date time.Time) *transaction.Transaction {
	doc := transaction.New(kind, nil)
	doc.Total = types.MustMoney(total)
	doc.Date = date
	return doc
}

func TestComputeLedgerRunningBalance(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	led := ComputeLedger([]*transaction.Transaction{
		datedDoc(transaction.KindCreditSale, "200.00", day),
		datedDoc(transaction.KindPayment, "150.00", day.Add(time.Hour)),
	}, types.MustMoney("50.00"))

	if len(led.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(led.Rows))
	}
	if !led.Rows[0].Running.Equal(types.MustMoney("200.00")) {
		t.Errorf("running after credit sale = %s, want 200.00", led.Rows[0].Running)
	}
	if !led.Rows[1].Running.Equal(types.MustMoney("50.00")) {
		t.Errorf("running after payment = %s, want 50.00", led.Rows[1].Running)
	}
	if !led.Net.Equal(types.MustMoney("50.00")) {
		t.Errorf("net = %s, want 50.00", led.Net)
	}
	if led.HasMismatch() {
		t.Errorf("stored balance matches, no warning expected: %v", led.Warnings)
	}
}

func TestComputeLedgerSettledSaleNetsToZero(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	led := ComputeLedger([]*transaction.Transaction{
		datedDoc(transaction.KindCashSale, "75.00", day),
	}, types.Zero())

	if !led.Rows[0].Debt.Equal(types.MustMoney("75.00")) || !led.Rows[0].Credit.Equal(types.MustMoney("75.00")) {
		t.Errorf("cash sale row = debt %s credit %s, want 75.00 both", led.Rows[0].Debt, led.Rows[0].Credit)
	}
	if !led.Net.IsZero() {
		t.Errorf("net = %s, want 0", led.Net)
	}
}

func TestComputeLedgerBalanceMismatch(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	led := ComputeLedger([]*transaction.Transaction{
		datedDoc(transaction.KindCreditSale, "200.00", day),
		datedDoc(transaction.KindPayment, "150.00", day.Add(time.Hour)),
	}, types.MustMoney("80.00"))

	if !led.HasMismatch() {
		t.Fatal("expected balance mismatch warning")
	}
	// The stored value stays authoritative: reported, not rewritten.
	if !led.StoredBalance.Equal(types.MustMoney("80.00")) {
		t.Errorf("stored balance = %s, want 80.00 untouched", led.StoredBalance)
	}
	if !led.Net.Equal(types.MustMoney("50.00")) {
		t.Errorf("net = %s, want 50.00", led.Net)
	}
}

func TestComputeLedgerSortsByDateThenID(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	first := datedDoc(transaction.KindCreditSale, "10.00", day)
	second := datedDoc(transaction.KindCreditSale, "20.00", day) // same date, later ID
	third := datedDoc(transaction.KindCreditSale, "30.00", day.AddDate(0, 0, 1))

	// Feed out of order.
	led := ComputeLedger([]*transaction.Transaction{third, second, first}, types.MustMoney("60.00"))

	want := []string{"10.00", "20.00", "30.00"}
	for i, total := range want {
		if !led.Rows[i].Debt.Equal(types.MustMoney(total)) {
			t.Errorf("row %d debt = %s, want %s", i, led.Rows[i].Debt, total)
		}
	}
}

func TestComputeLedgerSkipsDeleted(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	deleted := datedDoc(transaction.KindPayment, "100.00", day)
	deleted.MarkDeleted()

	led := ComputeLedger([]*transaction.Transaction{
		datedDoc(transaction.KindCreditSale, "200.00", day),
		deleted,
	}, types.MustMoney("200.00"))

	if len(led.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (deleted payment excluded)", len(led.Rows))
	}
	if led.HasMismatch() {
		t.Errorf("deleted payment must not affect the balance: %v", led.Warnings)
	}
}

func TestComputeLedgerReturnReducesBalance(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	led := ComputeLedger([]*transaction.Transaction{
		datedDoc(transaction.KindCreditSale, "200.00", day),
		datedDoc(transaction.KindReturn, "-25.00", day.Add(time.Hour)),
	}, types.MustMoney("175.00"))

	if !led.Rows[1].Debt.Equal(types.MustMoney("-25.00")) {
		t.Errorf("return debt = %s, want -25.00", led.Rows[1].Debt)
	}
	if !led.Rows[1].Running.Equal(types.MustMoney("175.00")) {
		t.Errorf("running after return = %s, want 175.00", led.Rows[1].Running)
	}
	if led.HasMismatch() {
		t.Errorf("unexpected mismatch: %v", led.Warnings)
	}
}

func TestComputeLedgerEmptyMatchesZeroStored(t *testing.T) {
	led := ComputeLedger(nil, types.Zero())
	if len(led.Rows) != 0 || led.HasMismatch() {
		t.Errorf("empty ledger should be clean, got %d rows, warnings %v", len(led.Rows), led.Warnings)
	}
}
