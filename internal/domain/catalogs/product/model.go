// Package product provides the Product catalog: the items the store sells.
package product

import (
	"context"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/types"
)

// Unit defines the unit an item is sold in.
type Unit string

const (
	UnitPiece Unit = "piece"
	UnitKg    Unit = "kg"
	UnitLiter Unit = "liter"
	UnitMeter Unit = "meter"
	UnitPack  Unit = "pack"
)

// Product represents an item the store sells.
type Product struct {
	entity.Catalog

	// StockCode is the stable item identifier (SKU). It is the preferred
	// join key for matching return lines to sale lines; the name is only a
	// fallback for legacy rows without one.
	StockCode *string `db:"stock_code" json:"stockCode,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Unit is the unit of sale
	Unit Unit `db:"unit" json:"unit"`

	// SalePrice is the current list price. Sale lines freeze their own
	// price; this field never retroactively changes a committed document.
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// IsWeighed indicates if item is sold by weight
	IsWeighed bool `db:"is_weighed" json:"isWeighed"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		Unit:      UnitPiece,
		SalePrice: types.Zero(),
	}
}

// Ref returns the join key that sale and return lines carry for this product:
// the stock code when present, otherwise the name.
func (p *Product) Ref() string {
	if p.StockCode != nil && *p.StockCode != "" {
		return *p.StockCode
	}
	return p.Name
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidUnit(p.Unit) {
		return apperror.NewValidation("invalid unit").
			WithDetail("field", "unit").
			WithDetail("value", string(p.Unit))
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	return nil
}

func isValidUnit(u Unit) bool {
	switch u {
	case UnitPiece, UnitKg, UnitLiter, UnitMeter, UnitPack:
		return true
	}
	return false
}
