package customer

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/core/types"
	"tillbook/internal/domain"
	"tillbook/internal/domain/settings"
	"tillbook/pkg/numerator"
)

// Service provides business logic for the Customer catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	numerator *numerator.Service
	settings  settings.Provider
}

// NewService creates a new Customer service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	num *numerator.Service,
	settingsProvider settings.Provider,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
		settings:       settingsProvider,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, c *Customer) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CU")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}

	if c.Phone != nil && *c.Phone != "" {
		exists, err := s.checkPhoneExists(ctx, *c.Phone, c.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("customer with this phone already exists").
				WithDetail("phone", *c.Phone)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, c *Customer) error {
	if c.Phone != nil && *c.Phone != "" {
		exists, err := s.checkPhoneExists(ctx, *c.Phone, c.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("customer with this phone already exists").
				WithDetail("phone", *c.Phone)
		}
	}
	return nil
}

// --- Entity-specific methods ---

// FindByPhone retrieves a customer by phone.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	return s.repo.FindByPhone(ctx, phone)
}

// GetDebtLimit resolves the effective debt limit for a customer: the
// per-customer override when set, otherwise the store default. Nil means
// unlimited.
func (s *Service) GetDebtLimit(ctx context.Context, customerID id.ID) (*types.Money, error) {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.DebtLimit != nil {
		return c.DebtLimit, nil
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "settings")
	}
	return cfg.DefaultDebtLimit, nil
}

func (s *Service) checkPhoneExists(ctx context.Context, phone string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
