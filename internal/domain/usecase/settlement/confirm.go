package settlement

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
)

// ConfirmationResult reports the outcome of confirming a received payment
type ConfirmationResult struct {
	Ledger         *entity.Ledger
	Payment        *entity.Payment
	PendingCleared int64 // Cents
	CreditCreated  int64 // Cents, the overpayment that became new credit
	AlreadyApplied bool  // True when an idempotency key matched an earlier confirmation
}

// ConfirmPayment records money received from a user. The pending obligation
// is cleared up to the received amount and any excess becomes credit. When the
// caller supplies an idempotency key, a repeated call with the same key
// returns the originally recorded payment without moving money again.
func (s *Service) ConfirmPayment(ctx context.Context, ledgerID uint64, amount, notes, idempotencyKey string) (*ConfirmationResult, error) {
	if ledgerID == 0 {
		return nil, errs.ErrInvalidLedgerID
	}

	amountCents, err := s.validateReceivedAmount(amount)
	if err != nil {
		return nil, err
	}

	// Fast idempotency check before taking any locks. The unique index on the
	// key backs this up inside the transaction for racing retries.
	if idempotencyKey != "" {
		if dup, err := s.findExistingConfirmation(ctx, ledgerID, idempotencyKey); err != nil || dup != nil {
			return dup, err
		}
	}

	var result *ConfirmationResult

	err = s.inTx(ctx, func(txCtx context.Context) error {
		ledgers := s.uow.GetLedgerRepository(txCtx)

		ledger, err := ledgers.GetForUpdate(txCtx, ledgerID)
		if err != nil {
			return err
		}

		oldPending := ledger.PendingPayment
		pendingCleared, creditCreated := ledger.ApplyConfirmation(amountCents, s.timeProvider)

		if err := ledgers.Update(txCtx, ledger); err != nil {
			return err
		}

		payment, err := entity.NewPaymentReceived(ledgerID, amountCents, notes, idempotencyKey, s.timeProvider)
		if err != nil {
			return err
		}
		if err := s.uow.GetPaymentRepository(txCtx).Create(txCtx, payment); err != nil {
			return err
		}

		entry := entity.NewAuditEntry(ledgerID, entity.AuditPaymentReceived, entity.ActorAdmin, oldPending, ledger.PendingPayment, s.timeProvider)
		entry.Notes = notes
		if err := s.uow.GetAuditRepository(txCtx).Append(txCtx, entry); err != nil {
			return err
		}

		result = &ConfirmationResult{
			Ledger:         ledger,
			Payment:        payment,
			PendingCleared: pendingCleared,
			CreditCreated:  creditCreated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment confirmed", map[string]any{
		"ledger_id":       ledgerID,
		"amount":          entity.CentsToString(amountCents),
		"pending_cleared": entity.CentsToString(result.PendingCleared),
		"credit_created":  entity.CentsToString(result.CreditCreated),
	})

	return result, nil
}

// findExistingConfirmation returns the earlier outcome for a repeated
// idempotency key, or nil when the key has not been seen
func (s *Service) findExistingConfirmation(ctx context.Context, ledgerID uint64, key string) (*ConfirmationResult, error) {
	payments := s.uow.GetPaymentRepository(ctx)

	existing, err := payments.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	ledger, err := s.uow.GetLedgerRepository(ctx).GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Duplicate confirmation suppressed", map[string]any{
		"ledger_id":       ledgerID,
		"idempotency_key": key,
		"payment_ref":     existing.Reference,
	})

	return &ConfirmationResult{
		Ledger:         ledger,
		Payment:        existing,
		AlreadyApplied: true,
	}, nil
}
