package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/model"
)

// LedgerRepository implements persistence.LedgerRepository using GORM
type LedgerRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLedgerRepository creates a new LedgerRepository instance
func NewLedgerRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func ledgerModelToEntity(m *model.Ledger) *entity.Ledger {
	return &entity.Ledger{
		ID:                 m.ID,
		Name:               m.Name,
		CurrentTab:         m.CurrentTab,
		PendingPayment:     m.PendingPayment,
		AccountBalance:     m.AccountBalance,
		Status:             entity.LedgerStatus(m.Status),
		DeletedAt:          m.DeletedAt,
		LastPaymentRequest: m.LastPaymentRequest,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func ledgerEntityToModel(e *entity.Ledger) *model.Ledger {
	return &model.Ledger{
		ID:                 e.ID,
		Name:               e.Name,
		CurrentTab:         e.CurrentTab,
		PendingPayment:     e.PendingPayment,
		AccountBalance:     e.AccountBalance,
		Status:             string(e.Status),
		DeletedAt:          e.DeletedAt,
		LastPaymentRequest: e.LastPaymentRequest,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *LedgerRepository) handleDatabaseError(operation string, err error, ledgerID uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Ledger not found", map[string]any{
			"ledger_id": ledgerID,
		})
		return errs.ErrLedgerNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"ledger_id": ledgerID,
		"error":     err.Error(),
	})

	if r.errorClassifier.IsLockError(err) {
		return errs.ErrLedgerLocked
	}
	return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
}

// GetByID retrieves a ledger by ID regardless of lifecycle state
func (r *LedgerRepository) GetByID(ctx context.Context, id uint64) (*entity.Ledger, error) {
	var m model.Ledger
	result := r.db.WithContext(ctx).First(&m, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting ledger", result.Error, id)
	}
	return ledgerModelToEntity(&m), nil
}

// GetForUpdate retrieves a ledger holding an exclusive row lock. Concurrent
// settlements on the same ledger serialize here.
func (r *LedgerRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Ledger, error) {
	var m model.Ledger
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("locking ledger", result.Error, id)
	}
	return ledgerModelToEntity(&m), nil
}

// Create persists a new ledger and fills in its assigned ID
func (r *LedgerRepository) Create(ctx context.Context, ledger *entity.Ledger) error {
	m := ledgerEntityToModel(ledger)
	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		return r.handleDatabaseError("creating ledger", result.Error, ledger.ID)
	}
	ledger.ID = m.ID

	r.logger.Info("Ledger row created", map[string]any{
		"ledger_id": ledger.ID,
		"name":      ledger.Name,
	})
	return nil
}

// Update persists the mutable fields of an existing ledger
func (r *LedgerRepository) Update(ctx context.Context, ledger *entity.Ledger) error {
	result := r.db.WithContext(ctx).Model(&model.Ledger{}).
		Where("id = ?", ledger.ID).
		Updates(map[string]interface{}{
			"name":                 ledger.Name,
			"current_tab":          ledger.CurrentTab,
			"pending_payment":      ledger.PendingPayment,
			"account_balance":      ledger.AccountBalance,
			"status":               string(ledger.Status),
			"deleted_at":           ledger.DeletedAt,
			"last_payment_request": ledger.LastPaymentRequest,
			"updated_at":           ledger.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating ledger", result.Error, ledger.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrLedgerNotFound
	}
	return nil
}

// Delete removes the ledger row entirely. Used only by hard delete.
func (r *LedgerRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&model.Ledger{}, id)
	if result.Error != nil {
		return r.handleDatabaseError("deleting ledger", result.Error, id)
	}
	return nil
}

// List returns ledgers ordered by name, excluding soft-deleted ones unless
// includeDeleted is set
func (r *LedgerRepository) List(ctx context.Context, includeDeleted bool) ([]*entity.Ledger, error) {
	query := r.db.WithContext(ctx).Model(&model.Ledger{}).Order("lower(name)")
	if !includeDeleted {
		query = query.Where("status = ?", string(entity.LedgerActive))
	}

	var models []model.Ledger
	if err := query.Find(&models).Error; err != nil {
		return nil, r.handleDatabaseError("listing ledgers", err, 0)
	}

	ledgers := make([]*entity.Ledger, 0, len(models))
	for i := range models {
		ledgers = append(ledgers, ledgerModelToEntity(&models[i]))
	}
	return ledgers, nil
}

// Totals aggregates active ledgers for the summary view
func (r *LedgerRepository) Totals(ctx context.Context) (*persistence.LedgerTotals, error) {
	var row struct {
		ActiveCount        int64
		OutstandingTab     int64
		OutstandingPending int64
		TotalCredit        int64
	}

	err := r.db.WithContext(ctx).Model(&model.Ledger{}).
		Select(`COUNT(*) AS active_count,
			COALESCE(SUM(current_tab), 0) AS outstanding_tab,
			COALESCE(SUM(pending_payment), 0) AS outstanding_pending,
			COALESCE(SUM(CASE WHEN account_balance > 0 THEN account_balance ELSE 0 END), 0) AS total_credit`).
		Where("status = ?", string(entity.LedgerActive)).
		Scan(&row).Error
	if err != nil {
		return nil, r.handleDatabaseError("aggregating ledgers", err, 0)
	}

	return &persistence.LedgerTotals{
		ActiveCount:        row.ActiveCount,
		OutstandingTab:     row.OutstandingTab,
		OutstandingPending: row.OutstandingPending,
		TotalCredit:        row.TotalCredit,
	}, nil
}
