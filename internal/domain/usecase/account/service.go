package account

import (
	"context"
	"fmt"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
)

// Service implements ledger lifecycle management: creation, the soft-delete /
// restore / hard-delete state machine, and read access.
type Service struct {
	uow          persistence.UnitOfWork
	ledgers      persistence.LedgerRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates an account service. The plain ledger repository serves
// single-row reads and creation; lifecycle transitions go through the unit of
// work.
func NewService(
	uow persistence.UnitOfWork,
	ledgers persistence.LedgerRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		ledgers:      ledgers,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreateLedger creates a ledger with every bookkeeping field at zero
func (s *Service) CreateLedger(ctx context.Context, name string) (*entity.Ledger, error) {
	ledger, err := entity.NewLedger(name, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := s.ledgers.Create(ctx, ledger); err != nil {
		s.logger.Error("Failed to create ledger", map[string]any{
			"name":  name,
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Ledger created", map[string]any{
		"ledger_id": ledger.ID,
		"name":      ledger.Name,
	})
	return ledger, nil
}

// GetLedger returns a ledger by ID regardless of lifecycle state
func (s *Service) GetLedger(ctx context.Context, ledgerID uint64) (*entity.Ledger, error) {
	if ledgerID == 0 {
		return nil, errs.ErrInvalidLedgerID
	}
	return s.ledgers.GetByID(ctx, ledgerID)
}

// ListLedgers returns ledgers ordered by name, excluding soft-deleted ones
// unless includeDeleted is set
func (s *Service) ListLedgers(ctx context.Context, includeDeleted bool) ([]*entity.Ledger, error) {
	return s.ledgers.List(ctx, includeDeleted)
}

// SoftDelete marks a ledger deleted. Bookkeeping fields are preserved and the
// ledger disappears from active views only.
func (s *Service) SoftDelete(ctx context.Context, ledgerID uint64) (*entity.Ledger, error) {
	return s.transition(ctx, ledgerID, entity.AuditSoftDelete, entity.ActorUser, func(l *entity.Ledger) error {
		return l.MarkDeleted(s.timeProvider)
	})
}

// Restore brings a soft-deleted ledger back to the active state
func (s *Service) Restore(ctx context.Context, ledgerID uint64) (*entity.Ledger, error) {
	return s.transition(ctx, ledgerID, entity.AuditRestore, entity.ActorAdmin, func(l *entity.Ledger) error {
		return l.Restore(s.timeProvider)
	})
}

func (s *Service) transition(ctx context.Context, ledgerID uint64, action entity.AuditAction, actor entity.AuditActor, apply func(*entity.Ledger) error) (*entity.Ledger, error) {
	if ledgerID == 0 {
		return nil, errs.ErrInvalidLedgerID
	}

	var ledger *entity.Ledger

	err := s.inTx(ctx, func(txCtx context.Context) error {
		ledgers := s.uow.GetLedgerRepository(txCtx)

		var err error
		ledger, err = ledgers.GetForUpdate(txCtx, ledgerID)
		if err != nil {
			return err
		}

		if err := apply(ledger); err != nil {
			return err
		}

		if err := ledgers.Update(txCtx, ledger); err != nil {
			return err
		}

		entry := entity.NewAuditEntry(ledgerID, action, actor, ledger.AccountBalance, ledger.AccountBalance, s.timeProvider)
		return s.uow.GetAuditRepository(txCtx).Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ledger lifecycle transition", map[string]any{
		"ledger_id": ledgerID,
		"action":    string(action),
		"status":    string(ledger.Status),
	})
	return ledger, nil
}

// HardDelete irreversibly purges a ledger: its payment records, its audit
// entries, then the row itself, all in one transaction so a partial purge can
// never be observed. A final audit entry documents the purge itself.
func (s *Service) HardDelete(ctx context.Context, ledgerID uint64) error {
	if ledgerID == 0 {
		return errs.ErrInvalidLedgerID
	}

	err := s.inTx(ctx, func(txCtx context.Context) error {
		ledgers := s.uow.GetLedgerRepository(txCtx)

		ledger, err := ledgers.GetForUpdate(txCtx, ledgerID)
		if err != nil {
			return err
		}

		if err := s.uow.GetPaymentRepository(txCtx).DeleteByLedgerID(txCtx, ledgerID); err != nil {
			return err
		}

		audits := s.uow.GetAuditRepository(txCtx)
		if err := audits.DeleteByLedgerID(txCtx, ledgerID); err != nil {
			return err
		}

		if err := ledgers.Delete(txCtx, ledgerID); err != nil {
			return err
		}

		// Appended after the per-ledger purge so this one entry survives as
		// the forensic trace of the deletion
		entry := entity.NewAuditEntry(ledgerID, entity.AuditHardDelete, entity.ActorAdmin, ledger.AccountBalance, 0, s.timeProvider)
		return audits.Append(txCtx, entry)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Ledger purged", map[string]any{
		"ledger_id": ledgerID,
	})
	return nil
}

func (s *Service) inTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}
	if err := fn(txCtx); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}
	if err := s.uow.Commit(txCtx); err != nil {
		_ = s.uow.Rollback(txCtx)
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}
	return nil
}
