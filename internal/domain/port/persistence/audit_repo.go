package persistence

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
)

// AuditRepository defines methods to interact with the append-only audit trail
type AuditRepository interface {
	// Append saves a new audit entry
	Append(ctx context.Context, entry *entity.AuditEntry) error

	// ListByLedger returns the newest entries for a ledger, most recent first
	ListByLedger(ctx context.Context, ledgerID uint64, limit int) ([]*entity.AuditEntry, error)

	// DeleteByLedgerID purges all audit entries of a ledger.
	// Used only by hard delete, inside its transaction.
	DeleteByLedgerID(ctx context.Context, ledgerID uint64) error
}
