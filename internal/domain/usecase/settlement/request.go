package settlement

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
)

// SettlementResult reports the outcome of a settlement request. Conservation
// holds for every accepted request: CreditApplied + AmountToPay == TotalCost.
type SettlementResult struct {
	Ledger           *entity.Ledger
	TotalCost        int64 // Cents
	CreditApplied    int64 // Cents
	AmountToPay      int64 // Cents, zero when credit fully covered the tab
	NotificationSent bool  // False when nothing was owed or the notice failed
}

// RequestSettlement converts a ledger's accrued tab into a pending payment
// obligation, applying any existing credit first. The bookkeeping commits in a
// single transaction; the notification gateway runs only after that commit and
// its outcome never mutates ledger state.
func (s *Service) RequestSettlement(ctx context.Context, ledgerID uint64) (*SettlementResult, error) {
	if ledgerID == 0 {
		return nil, errs.ErrInvalidLedgerID
	}

	var result *SettlementResult

	err := s.inTx(ctx, func(txCtx context.Context) error {
		ledgers := s.uow.GetLedgerRepository(txCtx)

		ledger, err := ledgers.GetForUpdate(txCtx, ledgerID)
		if err != nil {
			return err
		}
		// Settlement is user-triggered; soft-deleted ledgers are not
		// reachable from self-service actions.
		if ledger.IsDeleted() {
			return errs.ErrLedgerNotFound
		}

		plan, err := ledger.PlanSettlement()
		if err != nil {
			return errs.NewSettlementError(ledgerID, ledger.Tab(), ledger.Balance(), err)
		}

		oldTab := ledger.CurrentTab
		ledger.ApplySettlement(plan, s.timeProvider)

		if err := ledgers.Update(txCtx, ledger); err != nil {
			return err
		}

		if plan.AmountToPay > 0 {
			payment, err := entity.NewPaymentRequest(ledgerID, plan.AmountToPay, s.timeProvider)
			if err != nil {
				return err
			}
			if err := s.uow.GetPaymentRepository(txCtx).Create(txCtx, payment); err != nil {
				return err
			}
		}

		entry := entity.NewAuditEntry(ledgerID, entity.AuditPaymentRequest, entity.ActorUser, oldTab, 0, s.timeProvider)
		if err := s.uow.GetAuditRepository(txCtx).Append(txCtx, entry); err != nil {
			return err
		}

		result = &SettlementResult{
			Ledger:        ledger,
			TotalCost:     plan.TotalCost,
			CreditApplied: plan.CreditApplied,
			AmountToPay:   plan.AmountToPay,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Settlement requested", map[string]any{
		"ledger_id":      ledgerID,
		"total_cost":     entity.CentsToString(result.TotalCost),
		"credit_applied": entity.CentsToString(result.CreditApplied),
		"amount_to_pay":  entity.CentsToString(result.AmountToPay),
	})

	// The obligation is already durable. A slow or failing notification
	// channel must not hold locks or unwind the settlement, so the notice is
	// sent outside the transaction and its failure is only reported back.
	if result.AmountToPay > 0 {
		nctx, cancel := s.timeProvider.WithTimeout(ctx, s.cfg.NotifyTimeout)
		defer cancel()

		nres := s.notifier.Notify(nctx, ledgerID, result.Ledger.Name, result.AmountToPay)
		result.NotificationSent = nres.Sent
		if !nres.Sent {
			s.logger.Warn("Payment notification failed", map[string]any{
				"ledger_id": ledgerID,
				"amount":    entity.CentsToString(result.AmountToPay),
				"detail":    nres.Detail,
			})
		}
	}

	return result, nil
}
