package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/model"
)

// SettingsRepository implements persistence.SettingsRepository using GORM.
// Values are read live on every call; the tab accumulator depends on that to
// apply price changes without a restart.
type SettingsRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewSettingsRepository creates a new SettingsRepository instance
func NewSettingsRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetUnitPrice returns the current per-unit price in cents
func (r *SettingsRepository) GetUnitPrice(ctx context.Context) (int64, error) {
	var setting model.Setting
	result := r.db.WithContext(ctx).Where("key = ?", model.SettingUnitPrice).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: unit price setting missing", errs.ErrStorageFailure)
		}
		return 0, fmt.Errorf("%w: %s", errs.ErrStorageFailure, result.Error.Error())
	}

	cents, err := entity.ParseAmount(setting.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: stored unit price %q is malformed", errs.ErrStorageFailure, setting.Value)
	}
	return cents, nil
}

// SetUnitPrice updates the per-unit price. Accrued tabs are never revalued.
func (r *SettingsRepository) SetUnitPrice(ctx context.Context, cents int64) error {
	if cents <= 0 {
		return errs.ErrInvalidAmount
	}

	value := entity.CentsToString(cents)
	result := r.db.WithContext(ctx).Model(&model.Setting{}).
		Where("key = ?", model.SettingUnitPrice).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		now := r.timeProvider.Now()
		if err := r.db.WithContext(ctx).Create(&model.Setting{
			Key:       model.SettingUnitPrice,
			Value:     value,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
		}
	}

	r.logger.Info("Unit price updated", map[string]any{
		"unit_price": value,
	})
	return nil
}
