package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/domain/settings"
)

// SettingsRepo persists the single store-wide settings row.
type SettingsRepo struct {
	txManager *TxManager
}

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(txManager *TxManager) *SettingsRepo {
	return &SettingsRepo{txManager: txManager}
}

// Load reads the settings row. A missing row yields the defaults so a fresh
// database works without seeding.
func (r *SettingsRepo) Load(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings

	sql := `
		SELECT return_window_days, closed_until, default_debt_limit
		FROM sys_settings
		WHERE id = 1
	`

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql); err != nil {
		if pgxscan.NotFound(err) {
			return settings.Default(), nil
		}
		return s, fmt.Errorf("load settings: %w", err)
	}

	return s, nil
}

// Save upserts the settings row.
func (r *SettingsRepo) Save(ctx context.Context, s settings.Settings) error {
	sql := `
		INSERT INTO sys_settings (id, return_window_days, closed_until, default_debt_limit, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET return_window_days = EXCLUDED.return_window_days,
		    closed_until = EXCLUDED.closed_until,
		    default_debt_limit = EXCLUDED.default_debt_limit,
		    updated_at = NOW()
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, s.ReturnWindowDays, s.ClosedUntil, s.DefaultDebtLimit); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	// Wake up LISTEN-based caches on every instance. Fires on commit when
	// called inside a transaction.
	if _, err := querier.Exec(ctx, `SELECT pg_notify('settings_changed', '')`); err != nil {
		return fmt.Errorf("notify settings change: %w", err)
	}

	return nil
}

var _ settings.Repository = (*SettingsRepo)(nil)
