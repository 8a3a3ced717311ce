package persistence

import (
	"context"
)

// UnitOfWork coordinates multi-step ledger mutations so that a settlement,
// confirmation, adjustment or purge commits atomically or not at all
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetLedgerRepository returns a ledger repository bound to the current transaction
	GetLedgerRepository(ctx context.Context) LedgerRepository

	// GetPaymentRepository returns a payment repository bound to the current transaction
	GetPaymentRepository(ctx context.Context) PaymentRepository

	// GetAuditRepository returns an audit repository bound to the current transaction
	GetAuditRepository(ctx context.Context) AuditRepository
}
