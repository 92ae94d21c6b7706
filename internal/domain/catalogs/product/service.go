package product

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/domain"
	"tillbook/pkg/numerator"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkStockCodeUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		cfg := numerator.DefaultConfig("PR")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}
	return s.checkStockCodeUnique(ctx, p)
}

func (s *Service) checkStockCodeUnique(ctx context.Context, p *Product) error {
	if p.StockCode == nil || *p.StockCode == "" {
		return nil
	}
	existing, err := s.repo.FindByStockCode(ctx, *p.StockCode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewDuplicate("product", "stock code", *p.StockCode)
	}
	return nil
}

// --- Entity-specific methods ---

// FindByStockCode retrieves a product by stock code.
func (s *Service) FindByStockCode(ctx context.Context, stockCode string) (*Product, error) {
	return s.repo.FindByStockCode(ctx, stockCode)
}

// FindByBarcode retrieves a product by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// ResolveRef finds the product behind a line's join key: stock code first,
// exact name as fallback. A name shared by several products is reported, not
// guessed.
func (s *Service) ResolveRef(ctx context.Context, ref string) (*Product, error) {
	p, err := s.repo.FindByStockCode(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	matches, err := s.repo.FindByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, apperror.NewNotFound("product", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, apperror.NewBusinessRule(
			apperror.CodeAmbiguousJoinKey,
			"Several products share this name; assign stock codes to disambiguate",
		).WithDetail("product_ref", ref).WithDetail("matches", len(matches))
	}
}

// GetForUpdate retrieves a product with row lock.
func (s *Service) GetForUpdate(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetForUpdate(ctx, productID)
}
