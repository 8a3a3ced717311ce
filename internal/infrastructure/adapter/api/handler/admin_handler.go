package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
	settlementUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/settlement"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/dto"
)

// AdminHandler handles the admin panel endpoints: payment confirmation,
// balance corrections, the audit trail, and the unit price
type AdminHandler struct {
	settlementService *settlementUseCase.Service
	audits            persistence.AuditRepository
	settings          persistence.SettingsRepository
	logger            coreport.Logger
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(
	settlementService *settlementUseCase.Service,
	audits persistence.AuditRepository,
	settings persistence.SettingsRepository,
	logger coreport.Logger,
) *AdminHandler {
	return &AdminHandler{
		settlementService: settlementService,
		audits:            audits,
		settings:          settings,
		logger:            logger,
	}
}

// ConfirmPayment handles POST /admin/ledgers/:ledgerId/payments. An optional
// Idempotency-Key header makes retried submissions safe.
func (h *AdminHandler) ConfirmPayment(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	var req dto.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	result, err := h.settlementService.ConfirmPayment(c.Request.Context(), ledgerID, req.Amount, req.Notes, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConfirmPaymentResponse{
		Ledger:         dto.NewLedgerResponse(result.Ledger),
		Payment:        dto.NewPaymentResponse(result.Payment),
		PendingCleared: centsString(result.PendingCleared),
		CreditCreated:  centsString(result.CreditCreated),
		AlreadyApplied: result.AlreadyApplied,
	})
}

// AdjustBalance handles POST /admin/ledgers/:ledgerId/adjustment
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	var req dto.AdjustBalanceRequest
	if !bindJSON(c, &req) {
		return
	}

	ledger, err := h.settlementService.AdjustBalance(c.Request.Context(), ledgerID, req.Delta, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerResponse(ledger))
}

// ListAudit handles GET /admin/ledgers/:ledgerId/audit
func (h *AdminHandler) ListAudit(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	limit := 100
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.audits.ListByLedger(c.Request.Context(), ledgerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewAuditEntryResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

// GetUnitPrice handles GET /admin/settings/unit-price
func (h *AdminHandler) GetUnitPrice(c *gin.Context) {
	cents, err := h.settings.GetUnitPrice(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": centsString(cents)})
}

// SetUnitPrice handles PUT /admin/settings/unit-price. Accrued tabs keep
// their old valuation; only future taps use the new price.
func (h *AdminHandler) SetUnitPrice(c *gin.Context) {
	var req dto.SetUnitPriceRequest
	if !bindJSON(c, &req) {
		return
	}

	cents, err := entity.ParseAmount(req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.settings.SetUnitPrice(c.Request.Context(), cents); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"price": centsString(cents)})
}
