package persistence

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
)

// LedgerTotals aggregates the ledger table for reporting
type LedgerTotals struct {
	ActiveCount        int64
	OutstandingTab     int64 // Sum of current tabs across active ledgers, cents
	OutstandingPending int64 // Sum of pending payments across active ledgers, cents
	TotalCredit        int64 // Sum of positive account balances, cents
}

// LedgerRepository defines methods to interact with ledger data
type LedgerRepository interface {
	// GetByID retrieves a ledger by ID regardless of its lifecycle state
	//
	// Possible errors:
	// - ErrLedgerNotFound: If no ledger with the given ID exists
	// - ErrStorageFailure: If the database operation fails
	GetByID(ctx context.Context, id uint64) (*entity.Ledger, error)

	// GetForUpdate retrieves a ledger holding an exclusive row lock for the
	// duration of the enclosing transaction. Only valid inside a unit of work.
	//
	// Possible errors:
	// - ErrLedgerNotFound: If no ledger with the given ID exists
	// - ErrLedgerLocked: If the row lock could not be acquired
	// - ErrStorageFailure: If the database operation fails
	GetForUpdate(ctx context.Context, id uint64) (*entity.Ledger, error)

	// Create persists a new ledger and fills in its assigned ID
	Create(ctx context.Context, ledger *entity.Ledger) error

	// Update persists the mutable fields of an existing ledger
	//
	// Possible errors:
	// - ErrLedgerNotFound: If the ledger no longer exists
	// - ErrStorageFailure: If the database operation fails
	Update(ctx context.Context, ledger *entity.Ledger) error

	// Delete removes the ledger row entirely. Used only by hard delete.
	Delete(ctx context.Context, id uint64) error

	// List returns ledgers ordered by name. Soft-deleted ledgers are excluded
	// unless includeDeleted is set.
	List(ctx context.Context, includeDeleted bool) ([]*entity.Ledger, error)

	// Totals aggregates active ledgers for the summary view
	Totals(ctx context.Context) (*LedgerTotals, error)
}
