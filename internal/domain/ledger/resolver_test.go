package ledger

import (
	"testing"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func testSale(code string, lines ...transaction.Line) *transaction.Transaction {
	sale := transaction.New(transaction.KindCashSale, nil)
	sale.Code = code
	for _, l := range lines {
		sale.AddLine(nil, l.ProductRef, l.ProductName, l.UnitPrice, l.Quantity, l.DiscountRate)
	}
	return sale
}

func testReturn(saleCode, productRef string, q types.Quantity) *transaction.Transaction {
	ret := transaction.New(transaction.KindReturn, nil)
	ret.AddReturnLine(saleCode, nil, productRef, productRef, types.MustMoney("10.00"), q, types.Zero())
	return ret
}

func TestResolveReturnableLines(t *testing.T) {
	sale := testSale("SL-2026-00001", transaction.Line{
		ProductRef:   "STK-1",
		ProductName:  "Widget",
		UnitPrice:    types.MustMoney("10.00"),
		Quantity:     qty(5),
		DiscountRate: types.Zero(),
	})

	t.Run("untouched sale is fully returnable", func(t *testing.T) {
		resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))
		if len(resolved) != 1 {
			t.Fatalf("resolved %d lines, want 1", len(resolved))
		}
		if resolved[0].MaxReturnable != qty(5) {
			t.Errorf("maxReturnable = %s, want 5", resolved[0].MaxReturnable)
		}
		if resolved[0].AlreadyReturned != 0 {
			t.Errorf("alreadyReturned = %s, want 0", resolved[0].AlreadyReturned)
		}
	})

	t.Run("prior returns reduce the remainder", func(t *testing.T) {
		idx := NewReturnIndex([]*transaction.Transaction{
			testReturn("SL-2026-00001", "STK-1", qty(2)),
		})
		resolved := ResolveReturnableLines(sale, idx)
		if resolved[0].AlreadyReturned != qty(2) {
			t.Errorf("alreadyReturned = %s, want 2", resolved[0].AlreadyReturned)
		}
		if resolved[0].MaxReturnable != qty(3) {
			t.Errorf("maxReturnable = %s, want 3", resolved[0].MaxReturnable)
		}
	})

	t.Run("returns accumulate across documents", func(t *testing.T) {
		idx := NewReturnIndex([]*transaction.Transaction{
			testReturn("SL-2026-00001", "STK-1", qty(2)),
			testReturn("SL-2026-00001", "STK-1", qty(3)),
		})
		resolved := ResolveReturnableLines(sale, idx)
		if resolved[0].MaxReturnable != 0 {
			t.Errorf("maxReturnable = %s, want 0", resolved[0].MaxReturnable)
		}
	})

	t.Run("index ignores returns against other sales", func(t *testing.T) {
		idx := NewReturnIndex([]*transaction.Transaction{
			testReturn("SL-2026-00099", "STK-1", qty(4)),
		})
		resolved := ResolveReturnableLines(sale, idx)
		if resolved[0].MaxReturnable != qty(5) {
			t.Errorf("maxReturnable = %s, want 5", resolved[0].MaxReturnable)
		}
	})

	t.Run("shrunk sale clamps at zero and warns", func(t *testing.T) {
		// The sale was edited down to 1 unit after 2 had been returned.
		shrunk := testSale("SL-2026-00001", transaction.Line{
			ProductRef:  "STK-1",
			ProductName: "Widget",
			UnitPrice:   types.MustMoney("10.00"),
			Quantity:    qty(1),
		})
		idx := NewReturnIndex([]*transaction.Transaction{
			testReturn("SL-2026-00001", "STK-1", qty(2)),
		})
		resolved := ResolveReturnableLines(shrunk, idx)
		if resolved[0].MaxReturnable != 0 {
			t.Errorf("maxReturnable = %s, want 0 (clamped)", resolved[0].MaxReturnable)
		}
		if len(resolved[0].Warnings) == 0 || resolved[0].Warnings[0].Code != apperror.CodeOverReturn {
			t.Errorf("expected over-return warning, got %v", resolved[0].Warnings)
		}
	})
}

func TestResolveMergesLinesBySameRef(t *testing.T) {
	sale := testSale("SL-2026-00002",
		transaction.Line{ProductRef: "STK-2", ProductName: "Gadget", UnitPrice: types.MustMoney("4.00"), Quantity: qty(3)},
		transaction.Line{ProductRef: "STK-2", ProductName: "Gadget", UnitPrice: types.MustMoney("4.00"), Quantity: qty(2)},
	)

	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))
	if len(resolved) != 1 {
		t.Fatalf("resolved %d lines, want 1 merged", len(resolved))
	}
	if resolved[0].Sold != qty(5) {
		t.Errorf("sold = %s, want 5", resolved[0].Sold)
	}
	if len(resolved[0].Warnings) != 0 {
		t.Errorf("same-priced merge should not warn, got %v", resolved[0].Warnings)
	}
}

func TestResolveFlagsAmbiguousJoinKey(t *testing.T) {
	// Two distinct items collapsed onto one name-fallback ref with
	// different prices: flag, never guess.
	sale := testSale("SL-2026-00003",
		transaction.Line{ProductRef: "Honey", ProductName: "Honey", UnitPrice: types.MustMoney("7.00"), Quantity: qty(1)},
		transaction.Line{ProductRef: "Honey", ProductName: "Honey", UnitPrice: types.MustMoney("9.50"), Quantity: qty(1)},
	)

	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))
	if len(resolved) != 1 {
		t.Fatalf("resolved %d lines, want 1", len(resolved))
	}
	found := false
	for _, w := range resolved[0].Warnings {
		if w.Code == apperror.CodeAmbiguousJoinKey {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ambiguous join key warning, got %v", resolved[0].Warnings)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	sale := testSale("SL-2026-00004", transaction.Line{
		ProductRef: "STK-4", ProductName: "Sprocket",
		UnitPrice: types.MustMoney("2.50"), Quantity: qty(10),
	})
	idx := NewReturnIndex([]*transaction.Transaction{
		testReturn("SL-2026-00004", "STK-4", qty(4)),
	})

	first := ResolveReturnableLines(sale, idx)
	second := ResolveReturnableLines(sale, idx)
	if first[0].MaxReturnable != second[0].MaxReturnable {
		t.Errorf("resolution changed between identical calls: %s vs %s",
			first[0].MaxReturnable, second[0].MaxReturnable)
	}
}
