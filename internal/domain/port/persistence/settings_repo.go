package persistence

import "context"

// SettingsRepository stores admin-adjustable runtime settings
type SettingsRepository interface {
	// GetUnitPrice returns the current per-unit price in cents
	GetUnitPrice(ctx context.Context) (int64, error)

	// SetUnitPrice updates the per-unit price. Applies to future tab
	// mutations only; accrued tabs are never revalued.
	SetUnitPrice(ctx context.Context, cents int64) error
}
