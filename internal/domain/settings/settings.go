// Package settings provides store-wide back-office settings and the policies
// derived from them.
package settings

import (
	"context"
	"time"

	"tillbook/internal/core/types"
)

// Settings are the store-wide knobs of the ledger.
type Settings struct {
	// ReturnWindowDays limits how long after the sale date a return is
	// accepted. Zero means unlimited.
	ReturnWindowDays int `db:"return_window_days" json:"returnWindowDays"`

	// ClosedUntil is the date before which the ledger is closed for
	// modifications (period close).
	ClosedUntil time.Time `db:"closed_until" json:"closedUntil"`

	// DefaultDebtLimit applies to customers without a per-customer limit.
	// Nil means unlimited.
	DefaultDebtLimit *types.Money `db:"default_debt_limit" json:"defaultDebtLimit,omitempty"`
}

// Default returns the out-of-the-box settings: no return window, no closed
// period, no debt limit.
func Default() Settings {
	return Settings{}
}

// Provider serves settings to the domain services. Implementations may cache;
// Invalidate drops the cached copy after a settings write.
type Provider interface {
	Get(ctx context.Context) (Settings, error)
	Invalidate()
}

// Repository persists the settings row.
type Repository interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// StaticProvider serves fixed settings. Used in tests and in the worker when
// no store-backed provider is wired.
type StaticProvider struct {
	Settings Settings
}

func (p *StaticProvider) Get(ctx context.Context) (Settings, error) { return p.Settings, nil }
func (p *StaticProvider) Invalidate()                               {}

var _ Provider = (*StaticProvider)(nil)
