package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/model"
)

// PaymentRepository implements persistence.PaymentRepository using GORM
type PaymentRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPaymentRepository creates a new PaymentRepository instance
func NewPaymentRepository(db *gorm.DB, logger coreport.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func paymentModelToEntity(m *model.Payment) *entity.Payment {
	var key string
	if m.IdempotencyKey != nil {
		key = *m.IdempotencyKey
	}
	return &entity.Payment{
		ID:               m.ID,
		Reference:        m.Reference,
		LedgerID:         m.LedgerID,
		Amount:           m.Amount,
		Kind:             entity.PaymentKind(m.Kind),
		ConfirmedByAdmin: m.ConfirmedByAdmin,
		Notes:            m.Notes,
		IdempotencyKey:   key,
		CreatedAt:        m.CreatedAt,
	}
}

func paymentEntityToModel(e *entity.Payment) *model.Payment {
	m := &model.Payment{
		ID:               e.ID,
		Reference:        e.Reference,
		LedgerID:         e.LedgerID,
		Amount:           e.Amount,
		Kind:             string(e.Kind),
		ConfirmedByAdmin: e.ConfirmedByAdmin,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
	}
	// Store NULL rather than "" so the unique index never collides on
	// keyless payments
	if e.IdempotencyKey != "" {
		key := e.IdempotencyKey
		m.IdempotencyKey = &key
	}
	return m
}

// Create saves a new payment record
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	m := paymentEntityToModel(payment)
	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate payment rejected", map[string]any{
				"ledger_id":       payment.LedgerID,
				"idempotency_key": payment.IdempotencyKey,
			})
			return errs.ErrDuplicatePayment
		}
		r.logger.Error("Failed to create payment record", map[string]any{
			"ledger_id": payment.LedgerID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, result.Error.Error())
	}
	payment.ID = m.ID
	return nil
}

// GetByIdempotencyKey retrieves a payment by its client-supplied key.
// Returns (nil, nil) when no such payment exists.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Payment, error) {
	var m model.Payment
	result := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageFailure, result.Error.Error())
	}
	return paymentModelToEntity(&m), nil
}

// List returns payments matching the filter, newest first
func (r *PaymentRepository) List(ctx context.Context, filter persistence.PaymentFilter) ([]*entity.Payment, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{}).Order("created_at DESC, id DESC")

	if filter.LedgerID != nil {
		query = query.Where("ledger_id = ?", *filter.LedgerID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.ConfirmedOnly {
		query = query.Where("confirmed_by_admin = ?", true)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("created_at <= ?", *filter.Until)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []model.Payment
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}

	payments := make([]*entity.Payment, 0, len(models))
	for i := range models {
		payments = append(payments, paymentModelToEntity(&models[i]))
	}
	return payments, nil
}

// Totals aggregates requested and received amounts across all ledgers
func (r *PaymentRepository) Totals(ctx context.Context) (*persistence.PaymentTotals, error) {
	var row struct {
		Requested int64
		Received  int64
	}

	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select(`COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS requested,
			COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS received`,
			string(entity.PaymentRequest), string(entity.PaymentReceived)).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}

	return &persistence.PaymentTotals{
		Requested: row.Requested,
		Received:  row.Received,
	}, nil
}

// DeleteByLedgerID purges all payment records of a ledger
func (r *PaymentRepository) DeleteByLedgerID(ctx context.Context, ledgerID uint64) error {
	result := r.db.WithContext(ctx).Where("ledger_id = ?", ledgerID).Delete(&model.Payment{})
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, result.Error.Error())
	}

	r.logger.Info("Payment trail purged", map[string]any{
		"ledger_id": ledgerID,
		"rows":      result.RowsAffected,
	})
	return nil
}
