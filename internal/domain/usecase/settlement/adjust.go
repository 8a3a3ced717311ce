package settlement

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
)

// AdjustBalance adds a signed delta to a ledger's account balance. This is an
// administrative correction: no payment record is created, and beyond numeric
// well-formedness no validation is applied.
func (s *Service) AdjustBalance(ctx context.Context, ledgerID uint64, delta, notes string) (*entity.Ledger, error) {
	if ledgerID == 0 {
		return nil, errs.ErrInvalidLedgerID
	}

	deltaCents, err := entity.ParseSignedAmount(delta)
	if err != nil {
		return nil, err
	}

	var ledger *entity.Ledger

	err = s.inTx(ctx, func(txCtx context.Context) error {
		ledgers := s.uow.GetLedgerRepository(txCtx)

		ledger, err = ledgers.GetForUpdate(txCtx, ledgerID)
		if err != nil {
			return err
		}

		ledger.ApplyAdjustment(deltaCents, s.timeProvider)

		if err := ledgers.Update(txCtx, ledger); err != nil {
			return err
		}

		// The adjustment audits its raw delta rather than before/after values
		entry := entity.NewAuditDelta(ledgerID, entity.AuditBalanceAdjustment, entity.ActorAdmin, deltaCents, notes, s.timeProvider)
		return s.uow.GetAuditRepository(txCtx).Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Balance adjusted", map[string]any{
		"ledger_id":   ledgerID,
		"delta":       entity.CentsToString(deltaCents),
		"new_balance": ledger.Balance(),
	})

	return ledger, nil
}
