package ledger

import (
	"testing"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
)

func TestBuildReturnRefundCalculation(t *testing.T) {
	sale := testSale("SL-2026-00010", transaction.Line{
		ProductRef:   "STK-1",
		ProductName:  "Widget",
		UnitPrice:    types.MustMoney("10.00"),
		Quantity:     qty(5),
		DiscountRate: types.MustMoney("25"),
	})
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	draft, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{{ProductRef: "STK-1", Quantity: qty(2)}},
	})
	if err != nil {
		t.Fatalf("BuildReturn: %v", err)
	}

	// 10.00 × 2 × 0.75 = 15.00
	if !draft.RefundTotal().Equal(types.MustMoney("15.00")) {
		t.Errorf("refund = %s, want 15.00", draft.RefundTotal())
	}
	if !draft.Total.Equal(types.MustMoney("-15.00")) {
		t.Errorf("total = %s, want -15.00 (negative on returns)", draft.Total)
	}
	if draft.Kind != transaction.KindReturn {
		t.Errorf("kind = %s, want return", draft.Kind)
	}
	if len(draft.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(draft.Lines))
	}
	line := draft.Lines[0]
	if line.OriginalSaleCode == nil || *line.OriginalSaleCode != "SL-2026-00010" {
		t.Errorf("originalSaleCode = %v, want SL-2026-00010", line.OriginalSaleCode)
	}
	// Prices are frozen from the sale line.
	if !line.UnitPrice.Equal(types.MustMoney("10.00")) || !line.DiscountRate.Equal(types.MustMoney("25")) {
		t.Errorf("frozen price/discount = %s/%s, want 10.00/25", line.UnitPrice, line.DiscountRate)
	}
}

func TestBuildReturnRoundsPerLine(t *testing.T) {
	// 3.33 × 1 × (1 − 15/100) = 2.8305 → 2.83 at the boundary.
	sale := testSale("SL-2026-00011", transaction.Line{
		ProductRef:   "STK-2",
		ProductName:  "Gadget",
		UnitPrice:    types.MustMoney("3.33"),
		Quantity:     qty(1),
		DiscountRate: types.MustMoney("15"),
	})
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	draft, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{{ProductRef: "STK-2", Quantity: qty(1)}},
	})
	if err != nil {
		t.Fatalf("BuildReturn: %v", err)
	}
	if !draft.RefundTotal().Equal(types.MustMoney("2.83")) {
		t.Errorf("refund = %s, want 2.83", draft.RefundTotal())
	}
}

func TestBuildReturnClampsToRemainder(t *testing.T) {
	sale := testSale("SL-2026-00012", transaction.Line{
		ProductRef: "STK-1", ProductName: "Widget",
		UnitPrice: types.MustMoney("10.00"), Quantity: qty(5),
	})
	idx := NewReturnIndex([]*transaction.Transaction{
		testReturn("SL-2026-00012", "STK-1", qty(2)),
	})
	resolved := ResolveReturnableLines(sale, idx)

	// Asking for 4 with only 3 left: clamped to 3.
	draft, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{{ProductRef: "STK-1", Quantity: qty(4)}},
	})
	if err != nil {
		t.Fatalf("BuildReturn: %v", err)
	}
	if draft.Lines[0].Quantity != qty(3) {
		t.Errorf("quantity = %s, want 3 (clamped)", draft.Lines[0].Quantity)
	}
}

func TestBuildReturnNothingLeft(t *testing.T) {
	sale := testSale("SL-2026-00013", transaction.Line{
		ProductRef: "STK-1", ProductName: "Widget",
		UnitPrice: types.MustMoney("10.00"), Quantity: qty(5),
	})
	idx := NewReturnIndex([]*transaction.Transaction{
		testReturn("SL-2026-00013", "STK-1", qty(5)),
	})
	resolved := ResolveReturnableLines(sale, idx)

	_, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{{ProductRef: "STK-1", Quantity: qty(1)}},
	})
	if !apperror.IsCode(err, apperror.CodeNothingToReturn) {
		t.Errorf("err = %v, want NOTHING_TO_RETURN", err)
	}
}

func TestBuildReturnRejectsNegativeQuantity(t *testing.T) {
	sale := testSale("SL-2026-00014", transaction.Line{
		ProductRef: "STK-1", ProductName: "Widget",
		UnitPrice: types.MustMoney("10.00"), Quantity: qty(5),
	})
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	_, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{{ProductRef: "STK-1", Quantity: qty(-1)}},
	})
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestBuildReturnRejectsUnknownProduct(t *testing.T) {
	sale := testSale("SL-2026-00015", transaction.Line{
		ProductRef: "STK-1", ProductName: "Widget",
		UnitPrice: types.MustMoney("10.00"), Quantity: qty(5),
	})
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	_, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{{ProductRef: "STK-404", Quantity: qty(1)}},
	})
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestBuildReturnDropsZeroLines(t *testing.T) {
	sale := testSale("SL-2026-00016",
		transaction.Line{ProductRef: "STK-1", ProductName: "Widget", UnitPrice: types.MustMoney("10.00"), Quantity: qty(5)},
		transaction.Line{ProductRef: "STK-2", ProductName: "Gadget", UnitPrice: types.MustMoney("4.00"), Quantity: qty(2)},
	)
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	draft, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{
			{ProductRef: "STK-1", Quantity: qty(0)},
			{ProductRef: "STK-2", Quantity: qty(1)},
		},
	})
	if err != nil {
		t.Fatalf("BuildReturn: %v", err)
	}
	if len(draft.Lines) != 1 || draft.Lines[0].ProductRef != "STK-2" {
		t.Errorf("expected only the STK-2 line, got %+v", draft.Lines)
	}
}

func TestBuildReturnEmptyRequest(t *testing.T) {
	sale := testSale("SL-2026-00017", transaction.Line{
		ProductRef: "STK-1", ProductName: "Widget",
		UnitPrice: types.MustMoney("10.00"), Quantity: qty(5),
	})
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	_, err := BuildReturn(sale, resolved, ReturnRequest{})
	if !apperror.IsCode(err, apperror.CodeNothingToReturn) {
		t.Errorf("err = %v, want NOTHING_TO_RETURN", err)
	}
}

func TestBuildReturnRejectsDuplicateLines(t *testing.T) {
	sale := testSale("SL-2026-00018", transaction.Line{
		ProductRef: "STK-1", ProductName: "Widget",
		UnitPrice: types.MustMoney("10.00"), Quantity: qty(5),
	})
	resolved := ResolveReturnableLines(sale, NewReturnIndex(nil))

	_, err := BuildReturn(sale, resolved, ReturnRequest{
		Lines: []ReturnRequestLine{
			{ProductRef: "STK-1", Quantity: qty(1)},
			{ProductRef: "STK-1", Quantity: qty(2)},
		},
	})
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}
