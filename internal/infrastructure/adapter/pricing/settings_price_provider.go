package pricing

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
)

// SettingsPriceProvider reads the unit price from the settings table on every
// call. A price change applies to the next tap without a restart.
type SettingsPriceProvider struct {
	settings persistence.SettingsRepository
}

// NewSettingsPriceProvider creates a price provider backed by the settings store
func NewSettingsPriceProvider(settings persistence.SettingsRepository) *SettingsPriceProvider {
	return &SettingsPriceProvider{settings: settings}
}

// UnitPrice implements core.PriceProvider
func (p *SettingsPriceProvider) UnitPrice(ctx context.Context) (int64, error) {
	return p.settings.GetUnitPrice(ctx)
}

var _ core.PriceProvider = (*SettingsPriceProvider)(nil)
