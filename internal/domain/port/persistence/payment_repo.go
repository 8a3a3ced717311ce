package persistence

import (
	"context"
	"time"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
)

// PaymentFilter narrows a payment history query. Nil fields match everything.
type PaymentFilter struct {
	LedgerID      *uint64
	Kind          *entity.PaymentKind
	ConfirmedOnly bool
	Since         *time.Time
	Until         *time.Time
	Limit         int // 0 means no limit
}

// PaymentTotals aggregates the payment trail for reporting
type PaymentTotals struct {
	Requested int64 // Sum of request amounts, cents
	Received  int64 // Sum of received amounts, cents
}

// PaymentRepository defines methods to interact with the append-only payment trail
type PaymentRepository interface {
	// Create saves a new payment record
	//
	// Possible errors:
	// - ErrDuplicatePayment: If a record with the same idempotency key exists
	// - ErrStorageFailure: If the database operation fails
	Create(ctx context.Context, payment *entity.Payment) error

	// GetByIdempotencyKey retrieves a payment by its client-supplied key.
	// Returns (nil, nil) when no such payment exists.
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Payment, error)

	// List returns payments matching the filter, newest first
	List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, error)

	// Totals aggregates requested and received amounts across all ledgers
	Totals(ctx context.Context) (*PaymentTotals, error)

	// DeleteByLedgerID purges all payment records of a ledger.
	// Used only by hard delete, inside its transaction.
	DeleteByLedgerID(ctx context.Context, ledgerID uint64) error
}
