package migration

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/model"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Manager manages database migrations
type Manager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewManager creates a new migration manager
func NewManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// MigrateAll performs all migrations and seeds defaults. defaultUnitPrice is
// written to the settings table only when the key does not exist yet, so a
// runtime price change survives restarts.
func (m *Manager) MigrateAll(defaultUnitPrice string) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
	})

	if err := m.db.AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	currentVersion, err := m.GetCurrentVersion(context.Background())
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	if err := m.autoMigrateModels(); err != nil {
		m.logger.Error("Failed to auto-migrate models", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := m.createIndexes(); err != nil {
		m.logger.Error("Failed to create indexes", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := m.seedDefaultSettings(defaultUnitPrice); err != nil {
		m.logger.Error("Failed to seed default settings", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := m.setVersion(context.Background(), CurrentSchemaVersion, "Full schema migration"); err != nil {
		m.logger.Error("Failed to update schema version", map[string]any{
			"error":   err.Error(),
			"version": CurrentSchemaVersion,
		})
		return err
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

// GetCurrentVersion gets the current migration version
func (m *Manager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.MigrationVersion
	result := m.db.WithContext(ctx).Order("applied_at desc").First(&version)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return version.Version, nil
}

// setVersion records a new migration version
func (m *Manager) setVersion(ctx context.Context, version string, details string) error {
	var appliedAt time.Time
	if m.timeProvider != nil {
		appliedAt = m.timeProvider.Now()
	} else {
		appliedAt = time.Now()
	}

	migrationVersion := model.MigrationVersion{
		Version:   version,
		AppliedAt: appliedAt,
		Details:   details,
	}
	return m.db.WithContext(ctx).Create(&migrationVersion).Error
}

// autoMigrateModels auto-migrates database models
func (m *Manager) autoMigrateModels() error {
	m.logger.Info("Auto-migrating database models", nil)

	return m.db.AutoMigrate(
		&model.Ledger{},
		&model.Payment{},
		&model.AuditEntry{},
		&model.Setting{},
	)
}

// createIndexes creates database indexes beyond what AutoMigrate derives from
// the model tags
func (m *Manager) createIndexes() error {
	m.logger.Info("Creating database indexes", nil)

	// Partial unique index: NULL idempotency keys must not collide
	if err := m.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_idempotency_key_unique ON payments (idempotency_key) WHERE idempotency_key IS NOT NULL").Error; err != nil {
		return err
	}

	// Active ledger listing is the hot read path on the kiosk
	if err := m.db.Exec("CREATE INDEX IF NOT EXISTS idx_ledgers_status_name ON ledgers (status, name)").Error; err != nil {
		return err
	}

	// Payment history is filtered per ledger, newest first
	if err := m.db.Exec("CREATE INDEX IF NOT EXISTS idx_payments_ledger_created ON payments (ledger_id, created_at DESC)").Error; err != nil {
		return err
	}

	// Audit trail reads follow the same shape
	if err := m.db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_entries_ledger_created ON audit_entries (ledger_id, created_at DESC)").Error; err != nil {
		return err
	}

	return nil
}

// seedDefaultSettings inserts the default unit price when absent
func (m *Manager) seedDefaultSettings(defaultUnitPrice string) error {
	var count int64
	if err := m.db.Model(&model.Setting{}).Where("key = ?", model.SettingUnitPrice).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	if m.timeProvider != nil {
		now = m.timeProvider.Now()
	}

	m.logger.Info("Seeding default unit price", map[string]any{
		"unit_price": defaultUnitPrice,
	})

	return m.db.Create(&model.Setting{
		Key:       model.SettingUnitPrice,
		Value:     defaultUnitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
