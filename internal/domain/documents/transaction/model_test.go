package transaction

import (
	"context"
	"testing"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func newCustomerID() *id.ID {
	cid := id.New()
	return &cid
}

func TestValidate_AmountOnlyKinds(t *testing.T) {
	ctx := context.Background()

	t.Run("payment requires customer", func(t *testing.T) {
		doc := New(KindPayment, nil)
		doc.Total = types.MustMoney("50.00")
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for missing customer")
		}
	})

	t.Run("payment requires positive amount", func(t *testing.T) {
		doc := New(KindPayment, newCustomerID())
		doc.Total = types.Zero()
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for zero amount")
		}
	})

	t.Run("payment rejects lines", func(t *testing.T) {
		doc := New(KindPayment, newCustomerID())
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(1), types.Zero())
		doc.Total = types.MustMoney("50.00")
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for lines on a payment")
		}
	})

	t.Run("valid manual debit", func(t *testing.T) {
		doc := New(KindManualDebit, newCustomerID())
		doc.Total = types.MustMoney("120.00")
		if err := doc.Validate(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestValidate_SaleKinds(t *testing.T) {
	ctx := context.Background()

	t.Run("cash sale may be anonymous", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(2), types.Zero())
		if err := doc.Validate(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("credit sale requires customer", func(t *testing.T) {
		doc := New(KindCreditSale, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(2), types.Zero())
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for missing customer")
		}
	})

	t.Run("sale requires lines", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for empty lines")
		}
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(0), types.Zero())
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for zero quantity")
		}
	})

	t.Run("rejects discount above 100", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(1), types.MustMoney("101"))
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for discount above 100")
		}
	})

	t.Run("rejects sale line with original sale reference", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(1), types.Zero())
		code := "SL-2026-00001"
		doc.Lines[0].OriginalSaleCode = &code
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for sale line referencing a sale")
		}
	})
}

func TestValidate_ReturnKind(t *testing.T) {
	ctx := context.Background()

	t.Run("return line must reference original sale", func(t *testing.T) {
		doc := New(KindReturn, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(1), types.Zero())
		if err := doc.Validate(ctx); err == nil {
			t.Fatal("expected validation error for return line without sale reference")
		}
	})

	t.Run("valid return", func(t *testing.T) {
		doc := New(KindReturn, nil)
		doc.AddReturnLine("SL-2026-00001", nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(1), types.Zero())
		if err := doc.Validate(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRecalculateTotals(t *testing.T) {
	t.Run("sale sums rounded line amounts", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		// 3.333 × 3 = 9.999 → 10.00 rounded at the line boundary
		doc.AddLine(nil, "A", "A", types.MustMoney("3.333"), qty(3), types.Zero())
		// 2.40 × 2 × 0.75 = 3.60
		doc.AddLine(nil, "B", "B", types.MustMoney("2.40"), qty(2), types.MustMoney("25"))

		if want := types.MustMoney("13.60"); !doc.Total.Equal(want) {
			t.Errorf("total = %s, want %s", doc.Total, want)
		}
	})

	t.Run("return total is negative", func(t *testing.T) {
		doc := New(KindReturn, nil)
		doc.AddReturnLine("SL-2026-00001", nil, "A", "A", types.MustMoney("10.00"), qty(2), types.Zero())

		if want := types.MustMoney("-20.00"); !doc.Total.Equal(want) {
			t.Errorf("total = %s, want %s", doc.Total, want)
		}
		if want := types.MustMoney("20.00"); !doc.RefundTotal().Equal(want) {
			t.Errorf("refund total = %s, want %s", doc.RefundTotal(), want)
		}
	})

	t.Run("amount-only kinds keep their total", func(t *testing.T) {
		doc := New(KindPayment, newCustomerID())
		doc.Total = types.MustMoney("75.00")
		doc.RecalculateTotals()
		if want := types.MustMoney("75.00"); !doc.Total.Equal(want) {
			t.Errorf("total = %s, want %s", doc.Total, want)
		}
	})
}

func TestBalanceEffect(t *testing.T) {
	tests := []struct {
		kind   Kind
		total  string
		effect string
	}{
		{KindCashSale, "75.00", "0"},
		{KindCardSale, "75.00", "0"},
		{KindCreditSale, "75.00", "75.00"},
		{KindPayment, "75.00", "-75.00"},
		{KindManualDebit, "75.00", "75.00"},
		{KindReturn, "-30.00", "-30.00"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			doc := New(tt.kind, newCustomerID())
			doc.Total = types.MustMoney(tt.total)
			if got, want := doc.BalanceEffect(), types.MustMoney(tt.effect); !got.Equal(want) {
				t.Errorf("effect = %s, want %s", got, want)
			}
		})
	}
}

func TestGenerateMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("sale produces no movements", func(t *testing.T) {
		doc := New(KindCashSale, nil)
		doc.AddLine(nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(1), types.Zero())

		set, err := doc.GenerateMovements(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !set.IsEmpty() {
			t.Errorf("expected empty movement set, got %d returns", len(set.Returns))
		}
	})

	t.Run("return produces one movement per line", func(t *testing.T) {
		doc := New(KindReturn, nil)
		doc.AddReturnLine("SL-2026-00001", nil, "ESP", "Espresso", types.MustMoney("2.40"), qty(2), types.Zero())
		doc.AddReturnLine("SL-2026-00002", nil, "CRS", "Croissant", types.MustMoney("1.80"), qty(1), types.Zero())

		set, err := doc.GenerateMovements(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set.Returns) != 2 {
			t.Fatalf("expected 2 movements, got %d", len(set.Returns))
		}

		first := set.Returns[0]
		if first.SaleCode != "SL-2026-00001" {
			t.Errorf("sale code = %s, want SL-2026-00001", first.SaleCode)
		}
		if first.ProductRef != "ESP" {
			t.Errorf("product ref = %s, want ESP", first.ProductRef)
		}
		if !first.Quantity.Decimal().Equal(qty(2).Decimal()) {
			t.Errorf("quantity = %s, want 2", first.Quantity)
		}
		if first.RecorderVersion != doc.PostedVersion+1 {
			t.Errorf("recorder version = %d, want %d", first.RecorderVersion, doc.PostedVersion+1)
		}
	})
}
