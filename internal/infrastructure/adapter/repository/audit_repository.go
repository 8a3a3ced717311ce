package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/model"
)

// AuditRepository implements persistence.AuditRepository using GORM
type AuditRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAuditRepository creates a new AuditRepository instance
func NewAuditRepository(db *gorm.DB, logger coreport.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

func auditModelToEntity(m *model.AuditEntry) *entity.AuditEntry {
	return &entity.AuditEntry{
		ID:        m.ID,
		LedgerID:  m.LedgerID,
		Action:    entity.AuditAction(m.Action),
		Actor:     entity.AuditActor(m.Actor),
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
		Delta:     m.Delta,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}

// Append saves a new audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	m := &model.AuditEntry{
		LedgerID:  entry.LedgerID,
		Action:    string(entry.Action),
		Actor:     string(entry.Actor),
		OldValue:  entry.OldValue,
		NewValue:  entry.NewValue,
		Delta:     entry.Delta,
		Notes:     entry.Notes,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to append audit entry", map[string]any{
			"ledger_id": entry.LedgerID,
			"action":    string(entry.Action),
			"error":     err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}
	entry.ID = m.ID
	return nil
}

// ListByLedger returns the newest entries for a ledger, most recent first
func (r *AuditRepository) ListByLedger(ctx context.Context, ledgerID uint64, limit int) ([]*entity.AuditEntry, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditEntry{}).
		Where("ledger_id = ?", ledgerID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []model.AuditEntry
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}

	entries := make([]*entity.AuditEntry, 0, len(models))
	for i := range models {
		entries = append(entries, auditModelToEntity(&models[i]))
	}
	return entries, nil
}

// DeleteByLedgerID purges all audit entries of a ledger
func (r *AuditRepository) DeleteByLedgerID(ctx context.Context, ledgerID uint64) error {
	result := r.db.WithContext(ctx).Where("ledger_id = ?", ledgerID).Delete(&model.AuditEntry{})
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, result.Error.Error())
	}

	r.logger.Info("Audit trail purged", map[string]any{
		"ledger_id": ledgerID,
		"rows":      result.RowsAffected,
	})
	return nil
}
