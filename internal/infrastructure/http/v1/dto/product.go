package dto

import (
	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalogs/product"
)

// ProductResponse is a product in API responses.
type ProductResponse struct {
	CatalogResponse
	StockCode   *string `json:"stockCode,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	Unit        string  `json:"unit"`
	SalePrice   string  `json:"salePrice"`
	IsWeighed   bool    `json:"isWeighed"`
	Description *string `json:"description,omitempty"`
}

// FromProduct creates a response from a domain product.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		StockCode:       p.StockCode,
		Barcode:         p.Barcode,
		Unit:            string(p.Unit),
		SalePrice:       types.RoundMoney(p.SalePrice).String(),
		IsWeighed:       p.IsWeighed,
		Description:     p.Description,
	}
}

// CreateProductRequest creates a new product.
type CreateProductRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	StockCode   *string `json:"stockCode,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	Unit        string  `json:"unit"`
	SalePrice   string  `json:"salePrice"`
	IsWeighed   bool    `json:"isWeighed"`
	Description *string `json:"description,omitempty"`
}

// ToProduct maps the request to a new domain product.
func (r *CreateProductRequest) ToProduct() *product.Product {
	p := product.NewProduct(r.Code, r.Name)
	p.StockCode = r.StockCode
	p.Barcode = r.Barcode
	p.IsWeighed = r.IsWeighed
	p.Description = r.Description
	if r.Unit != "" {
		p.Unit = product.Unit(r.Unit)
	}
	if r.SalePrice != "" {
		if price, err := types.NewMoneyFromString(r.SalePrice); err == nil {
			p.SalePrice = price
		}
	}
	return p
}

// UpdateProductRequest updates product fields.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	StockCode   *string `json:"stockCode,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	SalePrice   *string `json:"salePrice,omitempty"`
	IsWeighed   *bool   `json:"isWeighed,omitempty"`
	Description *string `json:"description,omitempty"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply maps the update onto the existing product.
func (r *UpdateProductRequest) Apply(existing *product.Product) *product.Product {
	if r.Name != nil {
		existing.Name = *r.Name
	}
	if r.StockCode != nil {
		existing.StockCode = r.StockCode
	}
	if r.Barcode != nil {
		existing.Barcode = r.Barcode
	}
	if r.Unit != nil {
		existing.Unit = product.Unit(*r.Unit)
	}
	if r.SalePrice != nil {
		if price, err := types.NewMoneyFromString(*r.SalePrice); err == nil {
			existing.SalePrice = price
		}
	}
	if r.IsWeighed != nil {
		existing.IsWeighed = *r.IsWeighed
	}
	if r.Description != nil {
		existing.Description = r.Description
	}
	existing.Version = r.Version
	return existing
}
