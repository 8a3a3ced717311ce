package entity

import (
	"time"

	"github.com/google/uuid"

	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
)

// PaymentKind distinguishes obligations raised by settlement from money received
type PaymentKind string

const (
	// PaymentRequest is created when a settlement raises an obligation
	PaymentRequest PaymentKind = "request"
	// PaymentReceived is created when an admin confirms money received
	PaymentReceived PaymentKind = "received"
)

// Payment is an append-only record in the payment trail. Once created it is
// never mutated.
type Payment struct {
	ID               uint64
	Reference        string      // Stable external identifier
	LedgerID         uint64      // Ledger this payment belongs to
	Amount           int64       // Cents, always positive
	Kind             PaymentKind // request or received
	ConfirmedByAdmin bool        // True only for received payments
	Notes            string      // Optional admin notes
	IdempotencyKey   string      // Client-supplied dedup key, empty when not provided
	CreatedAt        time.Time
}

// NewPaymentRequest creates the record for a settlement obligation.
// The amount is the portion of the tab not covered by credit.
func NewPaymentRequest(ledgerID uint64, amountCents int64, timeProvider coreport.TimeProvider) (*Payment, error) {
	if amountCents <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	return &Payment{
		Reference: uuid.NewString(),
		LedgerID:  ledgerID,
		Amount:    amountCents,
		Kind:      PaymentRequest,
		CreatedAt: timeProvider.Now(),
	}, nil
}

// NewPaymentReceived creates the record for a confirmed payment
func NewPaymentReceived(ledgerID uint64, amountCents int64, notes, idempotencyKey string, timeProvider coreport.TimeProvider) (*Payment, error) {
	if amountCents <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	return &Payment{
		Reference:        uuid.NewString(),
		LedgerID:         ledgerID,
		Amount:           amountCents,
		Kind:             PaymentReceived,
		ConfirmedByAdmin: true,
		Notes:            notes,
		IdempotencyKey:   idempotencyKey,
		CreatedAt:        timeProvider.Now(),
	}, nil
}

// AmountString returns the amount as a decimal string
func (p *Payment) AmountString() string {
	return CentsToString(p.Amount)
}
