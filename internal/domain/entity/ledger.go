package entity

import (
	"strings"
	"time"

	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
)

// LedgerStatus represents the lifecycle state of a ledger
type LedgerStatus string

// Ledger lifecycle states. A purged ledger has no row at all, so it needs no constant.
const (
	LedgerActive  LedgerStatus = "active"
	LedgerDeleted LedgerStatus = "deleted"
)

// Ledger holds the bookkeeping fields for one person. All monetary values are
// stored in cents so every arithmetic result is exact to two decimal places.
type Ledger struct {
	ID                 uint64       // Unique identifier for the ledger
	Name               string       // Display name shown on the kiosk
	CurrentTab         int64        // Consumption accrued since the last settlement, never negative
	PendingPayment     int64        // Amount owed and awaiting confirmation, never negative
	AccountBalance     int64        // Signed: positive = credit owed to the user, negative = debt
	Status             LedgerStatus // Lifecycle state
	DeletedAt          *time.Time   // Set only while Status == LedgerDeleted
	LastPaymentRequest *time.Time   // When a settlement was last requested
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SettlementPlan is the outcome of planning a settlement over the current tab.
// Conservation holds by construction: CreditApplied + AmountToPay == TotalCost.
type SettlementPlan struct {
	TotalCost     int64 // The full tab being settled
	CreditApplied int64 // Portion covered by existing positive balance
	AmountToPay   int64 // Portion that becomes a pending payment obligation
}

// NewLedger creates a ledger with all bookkeeping fields at zero
func NewLedger(name string, timeProvider coreport.TimeProvider) (*Ledger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.ErrInvalidName
	}

	now := timeProvider.Now()
	return &Ledger{
		Name:      name,
		Status:    LedgerActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsDeleted reports whether the ledger is soft-deleted
func (l *Ledger) IsDeleted() bool {
	return l.Status == LedgerDeleted
}

// MarkDeleted moves the ledger to the soft-deleted state.
// Bookkeeping fields are preserved untouched.
func (l *Ledger) MarkDeleted(timeProvider coreport.TimeProvider) error {
	if l.IsDeleted() {
		return errs.ErrAlreadyDeleted
	}
	now := timeProvider.Now()
	l.Status = LedgerDeleted
	l.DeletedAt = &now
	l.UpdatedAt = now
	return nil
}

// Restore moves a soft-deleted ledger back to the active state
func (l *Ledger) Restore(timeProvider coreport.TimeProvider) error {
	if !l.IsDeleted() {
		return errs.ErrNotDeleted
	}
	l.Status = LedgerActive
	l.DeletedAt = nil
	l.UpdatedAt = timeProvider.Now()
	return nil
}

// AddToTab increases the running tab by the given cent amount
func (l *Ledger) AddToTab(cents int64, timeProvider coreport.TimeProvider) {
	l.CurrentTab += cents
	l.UpdatedAt = timeProvider.Now()
}

// SubtractFromTab decreases the running tab, clamped at zero
func (l *Ledger) SubtractFromTab(cents int64, timeProvider coreport.TimeProvider) {
	l.CurrentTab -= cents
	if l.CurrentTab < 0 {
		l.CurrentTab = 0
	}
	l.UpdatedAt = timeProvider.Now()
}

// PlanSettlement computes how the current tab would settle against existing
// credit. Only a positive balance is usable as credit; existing debt is left
// untouched and is not folded into the new obligation.
func (l *Ledger) PlanSettlement() (SettlementPlan, error) {
	if l.CurrentTab <= 0 {
		return SettlementPlan{}, errs.ErrNothingToSettle
	}

	totalCost := l.CurrentTab

	credit := l.AccountBalance
	if credit < 0 {
		credit = 0
	}
	if credit > totalCost {
		credit = totalCost
	}

	return SettlementPlan{
		TotalCost:     totalCost,
		CreditApplied: credit,
		AmountToPay:   totalCost - credit,
	}, nil
}

// ApplySettlement mutates the ledger according to a plan produced by
// PlanSettlement: the tab is zeroed, any uncovered portion becomes a pending
// payment, and the balance drops by the full cost.
func (l *Ledger) ApplySettlement(plan SettlementPlan, timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	l.CurrentTab = 0
	l.PendingPayment += plan.AmountToPay
	l.AccountBalance -= plan.TotalCost
	l.LastPaymentRequest = &now
	l.UpdatedAt = now
}

// ApplyConfirmation records money received. The pending obligation is cleared
// up to the received amount and any overpayment becomes new credit. Returns
// the cleared portion and the credit created.
func (l *Ledger) ApplyConfirmation(receivedCents int64, timeProvider coreport.TimeProvider) (pendingCleared, creditCreated int64) {
	pendingCleared = receivedCents
	if pendingCleared > l.PendingPayment {
		pendingCleared = l.PendingPayment
	}
	creditCreated = receivedCents - pendingCleared

	l.PendingPayment -= pendingCleared
	l.AccountBalance += receivedCents
	l.UpdatedAt = timeProvider.Now()
	return pendingCleared, creditCreated
}

// ApplyAdjustment adds a signed delta to the account balance.
// This is an administrative correction tool, not a payment.
func (l *Ledger) ApplyAdjustment(deltaCents int64, timeProvider coreport.TimeProvider) {
	l.AccountBalance += deltaCents
	l.UpdatedAt = timeProvider.Now()
}

// Tab returns the current tab as a decimal string
func (l *Ledger) Tab() string {
	return CentsToString(l.CurrentTab)
}

// Pending returns the pending payment as a decimal string
func (l *Ledger) Pending() string {
	return CentsToString(l.PendingPayment)
}

// Balance returns the account balance as a decimal string
func (l *Ledger) Balance() string {
	return CentsToString(l.AccountBalance)
}
