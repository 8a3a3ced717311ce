package entity

import (
	"time"

	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
)

// AuditAction identifies the mutating operation an audit entry records
type AuditAction string

const (
	AuditTabIncrement      AuditAction = "tab_increment"
	AuditTabDecrement      AuditAction = "tab_decrement"
	AuditPaymentRequest    AuditAction = "payment_request"
	AuditPaymentReceived   AuditAction = "payment_received"
	AuditBalanceAdjustment AuditAction = "balance_adjustment"
	AuditSoftDelete        AuditAction = "soft_delete"
	AuditRestore           AuditAction = "restore"
	AuditHardDelete        AuditAction = "hard_delete"
)

// AuditActor identifies who triggered a mutation
type AuditActor string

const (
	ActorUser  AuditActor = "user"
	ActorAdmin AuditActor = "admin"
)

// AuditEntry is an append-only forensic record of a ledger mutation.
// The settlement engine never reads these back; they exist for reconstruction.
type AuditEntry struct {
	ID        uint64
	LedgerID  uint64
	Action    AuditAction
	Actor     AuditActor
	OldValue  int64  // Cents, value of the affected field before the mutation
	NewValue  int64  // Cents, value after the mutation
	Delta     int64  // Cents, signed change applied
	Notes     string // Optional free-form context, set for admin corrections
	CreatedAt time.Time
}

// NewAuditEntry creates an audit entry stamped with the current time
func NewAuditEntry(ledgerID uint64, action AuditAction, actor AuditActor, oldValue, newValue int64, timeProvider coreport.TimeProvider) *AuditEntry {
	return &AuditEntry{
		LedgerID:  ledgerID,
		Action:    action,
		Actor:     actor,
		OldValue:  oldValue,
		NewValue:  newValue,
		Delta:     newValue - oldValue,
		CreatedAt: timeProvider.Now(),
	}
}

// NewAuditDelta creates an audit entry that records only a raw signed delta.
// Used for balance adjustments, which audit the correction itself rather than
// before/after snapshots.
func NewAuditDelta(ledgerID uint64, action AuditAction, actor AuditActor, delta int64, notes string, timeProvider coreport.TimeProvider) *AuditEntry {
	return &AuditEntry{
		LedgerID:  ledgerID,
		Action:    action,
		Actor:     actor,
		Delta:     delta,
		Notes:     notes,
		CreatedAt: timeProvider.Now(),
	}
}
