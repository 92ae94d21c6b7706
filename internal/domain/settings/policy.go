package settings

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
)

// PostingPolicy defines rules for committing and modifying ledger documents.
type PostingPolicy interface {
	// CanPost checks if a document can be committed with the given date
	CanPost(ctx context.Context, docDate time.Time) error

	// CanModify checks if a committed document can be modified
	CanModify(ctx context.Context, docDate time.Time) error

	// CanReturn checks if a sale with the given date still accepts returns
	CanReturn(ctx context.Context, saleDate time.Time) error
}

// StorePolicy derives posting rules from the store settings: period close for
// any mutation, return window for returns on top of that.
type StorePolicy struct {
	provider Provider
}

// NewStorePolicy creates a policy backed by the settings provider.
func NewStorePolicy(provider Provider) *StorePolicy {
	return &StorePolicy{provider: provider}
}

func (p *StorePolicy) CanPost(ctx context.Context, docDate time.Time) error {
	s, err := p.provider.Get(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "settings")
	}
	if !s.ClosedUntil.IsZero() && docDate.Before(s.ClosedUntil) {
		return apperror.NewPeriodClosed(s.ClosedUntil.Format("2006-01"))
	}
	return nil
}

func (p *StorePolicy) CanModify(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *StorePolicy) CanReturn(ctx context.Context, saleDate time.Time) error {
	if err := p.CanPost(ctx, time.Now().UTC()); err != nil {
		return err
	}
	s, err := p.provider.Get(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "settings")
	}
	if s.ReturnWindowDays <= 0 {
		return nil
	}
	deadline := saleDate.AddDate(0, 0, s.ReturnWindowDays)
	if time.Now().UTC().After(deadline) {
		return apperror.NewBusinessRule(
			apperror.CodeReturnWindowClosed,
			fmt.Sprintf("Return window of %d days has passed", s.ReturnWindowDays),
		).WithDetail("sale_date", saleDate.Format(time.DateOnly)).
			WithDetail("deadline", deadline.Format(time.DateOnly))
	}
	return nil
}

var _ PostingPolicy = (*StorePolicy)(nil)
