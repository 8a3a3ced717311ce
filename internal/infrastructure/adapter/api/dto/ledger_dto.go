package dto

import (
	"time"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
)

// CreateLedgerRequest represents the API request for creating a ledger
type CreateLedgerRequest struct {
	Name string `json:"name" binding:"required"`
}

// LedgerResponse represents a ledger in API responses. Monetary fields are
// decimal strings, never floats.
type LedgerResponse struct {
	ID                 uint64     `json:"id"`
	Name               string     `json:"name"`
	CurrentTab         string     `json:"currentTab"`
	PendingPayment     string     `json:"pendingPayment"`
	AccountBalance     string     `json:"accountBalance"`
	Status             string     `json:"status"`
	LastPaymentRequest *time.Time `json:"lastPaymentRequest,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// NewLedgerResponse maps a ledger entity to its API representation
func NewLedgerResponse(l *entity.Ledger) LedgerResponse {
	return LedgerResponse{
		ID:                 l.ID,
		Name:               l.Name,
		CurrentTab:         l.Tab(),
		PendingPayment:     l.Pending(),
		AccountBalance:     l.Balance(),
		Status:             string(l.Status),
		LastPaymentRequest: l.LastPaymentRequest,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// LedgerListResponse wraps a list of ledgers
type LedgerListResponse struct {
	Ledgers []LedgerResponse `json:"ledgers"`
}

// NewLedgerListResponse maps a slice of ledger entities
func NewLedgerListResponse(ledgers []*entity.Ledger) LedgerListResponse {
	out := LedgerListResponse{Ledgers: make([]LedgerResponse, 0, len(ledgers))}
	for _, l := range ledgers {
		out.Ledgers = append(out.Ledgers, NewLedgerResponse(l))
	}
	return out
}

// AuditEntryResponse represents one audit entry in API responses
type AuditEntryResponse struct {
	ID        uint64    `json:"id"`
	LedgerID  uint64    `json:"ledgerId"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	Delta     string    `json:"delta"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAuditEntryResponse maps an audit entry entity
func NewAuditEntryResponse(e *entity.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        e.ID,
		LedgerID:  e.LedgerID,
		Action:    string(e.Action),
		Actor:     string(e.Actor),
		OldValue:  entity.CentsToString(e.OldValue),
		NewValue:  entity.CentsToString(e.NewValue),
		Delta:     entity.CentsToString(e.Delta),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}
