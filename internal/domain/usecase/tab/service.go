package tab

import (
	"context"
	"fmt"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
)

// Service implements the tab accumulator: it moves a ledger's running tab up
// and down by the current unit price. The price is read live on every call so
// a price change applies to future increments only.
type Service struct {
	uow          persistence.UnitOfWork
	price        coreport.PriceProvider
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a tab service
func NewService(
	uow persistence.UnitOfWork,
	price coreport.PriceProvider,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		price:        price,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Increment adds one unit price to the ledger's running tab
func (s *Service) Increment(ctx context.Context, ledgerID uint64) (*entity.Ledger, error) {
	return s.mutateTab(ctx, ledgerID, entity.AuditTabIncrement)
}

// Decrement subtracts one unit price from the running tab, clamped at zero.
// Used by the kiosk to undo an accidental tap.
func (s *Service) Decrement(ctx context.Context, ledgerID uint64) (*entity.Ledger, error) {
	return s.mutateTab(ctx, ledgerID, entity.AuditTabDecrement)
}

func (s *Service) mutateTab(ctx context.Context, ledgerID uint64, action entity.AuditAction) (*entity.Ledger, error) {
	if ledgerID == 0 {
		return nil, errs.ErrInvalidLedgerID
	}

	unitPrice, err := s.price.UnitPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: unit price unavailable: %s", errs.ErrStorageFailure, err.Error())
	}

	var ledger *entity.Ledger

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}

	err = func() error {
		ledgers := s.uow.GetLedgerRepository(txCtx)

		ledger, err = ledgers.GetForUpdate(txCtx, ledgerID)
		if err != nil {
			return err
		}
		// Self-service actions never reach a soft-deleted ledger
		if ledger.IsDeleted() {
			return errs.ErrLedgerNotFound
		}

		oldTab := ledger.CurrentTab
		switch action {
		case entity.AuditTabIncrement:
			ledger.AddToTab(unitPrice, s.timeProvider)
		default:
			ledger.SubtractFromTab(unitPrice, s.timeProvider)
		}

		if err := ledgers.Update(txCtx, ledger); err != nil {
			return err
		}

		entry := entity.NewAuditEntry(ledgerID, action, entity.ActorUser, oldTab, ledger.CurrentTab, s.timeProvider)
		return s.uow.GetAuditRepository(txCtx).Append(txCtx, entry)
	}()
	if err != nil {
		_ = s.uow.Rollback(txCtx)
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		_ = s.uow.Rollback(txCtx)
		return nil, fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}

	s.logger.Debug("Tab updated", map[string]any{
		"ledger_id":  ledgerID,
		"action":     string(action),
		"unit_price": entity.CentsToString(unitPrice),
		"tab":        ledger.Tab(),
	})

	return ledger, nil
}
