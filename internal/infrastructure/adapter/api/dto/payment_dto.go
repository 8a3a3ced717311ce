package dto

import (
	"time"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
)

// SettlementResponse represents the API response for a settlement request
type SettlementResponse struct {
	Ledger           LedgerResponse `json:"ledger"`
	TotalCost        string         `json:"totalCost"`
	CreditApplied    string         `json:"creditApplied"`
	AmountToPay      string         `json:"amountToPay"`
	NotificationSent bool           `json:"notificationSent"`
}

// ConfirmPaymentRequest represents the API request for confirming a payment
type ConfirmPaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
	Notes  string `json:"notes"`
}

// ConfirmPaymentResponse represents the API response for a confirmed payment
type ConfirmPaymentResponse struct {
	Ledger         LedgerResponse  `json:"ledger"`
	Payment        PaymentResponse `json:"payment"`
	PendingCleared string          `json:"pendingCleared"`
	CreditCreated  string          `json:"creditCreated"`
	AlreadyApplied bool            `json:"alreadyApplied"`
}

// AdjustBalanceRequest represents the API request for an admin balance correction
type AdjustBalanceRequest struct {
	Delta string `json:"delta" binding:"required"`
	Notes string `json:"notes"`
}

// SetUnitPriceRequest represents the API request for changing the coffee price
type SetUnitPriceRequest struct {
	Price string `json:"price" binding:"required"`
}

// PaymentResponse represents one payment record in API responses
type PaymentResponse struct {
	Reference        string    `json:"reference"`
	LedgerID         uint64    `json:"ledgerId"`
	Amount           string    `json:"amount"`
	Kind             string    `json:"kind"`
	ConfirmedByAdmin bool      `json:"confirmedByAdmin"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewPaymentResponse maps a payment entity to its API representation
func NewPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		Reference:        p.Reference,
		LedgerID:         p.LedgerID,
		Amount:           p.AmountString(),
		Kind:             string(p.Kind),
		ConfirmedByAdmin: p.ConfirmedByAdmin,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
	}
}

// PaymentListResponse wraps a payment history page
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// NewPaymentListResponse maps a slice of payment entities
func NewPaymentListResponse(payments []*entity.Payment) PaymentListResponse {
	out := PaymentListResponse{Payments: make([]PaymentResponse, 0, len(payments))}
	for _, p := range payments {
		out.Payments = append(out.Payments, NewPaymentResponse(p))
	}
	return out
}

// SummaryResponse represents the aggregate report for the admin panel
type SummaryResponse struct {
	ActiveLedgers      int64  `json:"activeLedgers"`
	OutstandingTab     string `json:"outstandingTab"`
	OutstandingPending string `json:"outstandingPending"`
	TotalCredit        string `json:"totalCredit"`
	TotalRequested     string `json:"totalRequested"`
	TotalReceived      string `json:"totalReceived"`
}
