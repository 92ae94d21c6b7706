package settings

import (
	"context"
	"testing"
	"time"

	"tillbook/internal/core/apperror"
)

func staticPolicy(s Settings) *StorePolicy {
	return NewStorePolicy(&StaticProvider{Settings: s})
}

func TestCanPost_PeriodClose(t *testing.T) {
	ctx := context.Background()
	closedUntil := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	policy := staticPolicy(Settings{ClosedUntil: closedUntil})

	t.Run("date before close is rejected", func(t *testing.T) {
		err := policy.CanPost(ctx, closedUntil.AddDate(0, 0, -1))
		if err == nil {
			t.Fatal("expected period closed error")
		}
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodePeriodClosed {
			t.Errorf("error code = %v, want %s", err, apperror.CodePeriodClosed)
		}
	})

	t.Run("date at close boundary is accepted", func(t *testing.T) {
		if err := policy.CanPost(ctx, closedUntil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("no close means anything goes", func(t *testing.T) {
		open := staticPolicy(Settings{})
		if err := open.CanPost(ctx, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCanReturn_Window(t *testing.T) {
	ctx := context.Background()

	t.Run("zero window never expires", func(t *testing.T) {
		policy := staticPolicy(Settings{})
		saleDate := time.Now().UTC().AddDate(-2, 0, 0)
		if err := policy.CanReturn(ctx, saleDate); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("sale inside the window is accepted", func(t *testing.T) {
		policy := staticPolicy(Settings{ReturnWindowDays: 30})
		saleDate := time.Now().UTC().AddDate(0, 0, -10)
		if err := policy.CanReturn(ctx, saleDate); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("sale past the window is rejected", func(t *testing.T) {
		policy := staticPolicy(Settings{ReturnWindowDays: 30})
		saleDate := time.Now().UTC().AddDate(0, 0, -31)
		err := policy.CanReturn(ctx, saleDate)
		if err == nil {
			t.Fatal("expected return window error")
		}
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodeReturnWindowClosed {
			t.Errorf("error code = %v, want %s", err, apperror.CodeReturnWindowClosed)
		}
	})

	t.Run("closed period blocks returns regardless of window", func(t *testing.T) {
		policy := staticPolicy(Settings{
			ClosedUntil: time.Now().UTC().AddDate(1, 0, 0),
		})
		err := policy.CanReturn(ctx, time.Now().UTC().AddDate(0, 0, -1))
		if err == nil {
			t.Fatal("expected period closed error")
		}
	})
}
