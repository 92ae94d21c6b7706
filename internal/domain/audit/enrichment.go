// Package audit provides utilities for audit field enrichment in domain entities.
package audit

import (
	"context"

	appcontext "tillbook/internal/core/context"
)

// EnrichCreatedBy sets CreatedBy and UpdatedBy fields from the context
// operator. Use in BeforeCreate hooks.
//
// The entity must have public CreatedBy and UpdatedBy string fields.
// If no operator is in context, this is a no-op.
func EnrichCreatedBy(ctx context.Context, entity interface{}) error {
	operatorID := appcontext.GetOperatorID(ctx)
	if operatorID == "" {
		return nil
	}

	switch e := entity.(type) {
	case interface {
		SetCreatedBy(string)
		SetUpdatedBy(string)
	}:
		e.SetCreatedBy(operatorID)
		e.SetUpdatedBy(operatorID)
	default:
		// Entities with public fields use the Direct helpers below.
	}

	return nil
}

// EnrichUpdatedBy sets only the UpdatedBy field from the context operator.
// Use in BeforeUpdate hooks.
func EnrichUpdatedBy(ctx context.Context, entity interface{}) error {
	operatorID := appcontext.GetOperatorID(ctx)
	if operatorID == "" {
		return nil
	}

	switch e := entity.(type) {
	case interface{ SetUpdatedBy(string) }:
		e.SetUpdatedBy(operatorID)
	default:
	}

	return nil
}

// EnrichCreatedByDirect is a type-safe helper that sets fields directly.
// Use when entity has public CreatedBy/UpdatedBy fields.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	operatorID := appcontext.GetOperatorID(ctx)
	if operatorID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = operatorID
		*updatedBy = operatorID
	}
}

// EnrichUpdatedByDirect is a type-safe helper that sets UpdatedBy directly.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	operatorID := appcontext.GetOperatorID(ctx)
	if operatorID != "" && updatedBy != nil {
		*updatedBy = operatorID
	}
}
