// Package returns provides the returned-quantity register service.
package returns

import (
	"context"
	"fmt"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/pkg/logger"
)

// Service provides business operations for the returns register.
// Transactions are managed by the caller (the return posting flow).
type Service struct {
	repo Repository
}

// NewService creates a new returns register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records returned-quantity movements from a return posting.
// Called within the posting transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.ReturnMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if m.SaleCode == "" || m.ProductRef == "" {
			return apperror.NewValidation(fmt.Sprintf("movement %d: sale code and product ref are required", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded return movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for a document (used during unposting).
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed return movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// CheckAndReserve re-verifies the over-return invariant with pessimistic
// locking. Called within the posting transaction before movements are
// written: whatever a stale screen showed, two concurrent submissions
// serialize on the balance rows and the second one fails here.
func (s *Service) CheckAndReserve(ctx context.Context, items []SoldQuantity) error {
	for _, item := range items {
		balance, err := s.repo.GetBalanceForUpdate(ctx, item.SaleCode, item.ProductRef)
		if err != nil {
			return fmt.Errorf("get balance for %s/%s: %w", item.SaleCode, item.ProductRef, err)
		}

		if balance.Quantity+item.Requested > item.Sold {
			remaining := item.Sold - balance.Quantity
			if remaining < 0 {
				remaining = 0
			}
			return apperror.NewOverReturn(
				item.SaleCode,
				item.ProductRef,
				item.Requested.Float64(),
				remaining.Float64(),
			)
		}
	}

	return nil
}

// ReturnedBySale returns the returned quantities recorded against one sale.
func (s *Service) ReturnedBySale(ctx context.Context, saleCode string) ([]entity.ReturnBalance, error) {
	return s.repo.GetBalancesBySale(ctx, saleCode)
}
