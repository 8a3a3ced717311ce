package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	accountUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/account"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/dto"
)

// LedgerHandler handles ledger lifecycle HTTP requests
type LedgerHandler struct {
	accountService *accountUseCase.Service
	logger         coreport.Logger
}

// NewLedgerHandler creates a new ledger handler instance
func NewLedgerHandler(accountService *accountUseCase.Service, logger coreport.Logger) *LedgerHandler {
	return &LedgerHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// CreateLedger handles POST /ledgers
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	var req dto.CreateLedgerRequest
	if !bindJSON(c, &req) {
		return
	}

	ledger, err := h.accountService.CreateLedger(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewLedgerResponse(ledger))
}

// GetLedger handles GET /ledgers/:ledgerId
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	ledger, err := h.accountService.GetLedger(c.Request.Context(), ledgerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerResponse(ledger))
}

// ListLedgers handles GET /ledgers. Soft-deleted ledgers are included only
// when ?includeDeleted=true is set by the admin panel.
func (h *LedgerHandler) ListLedgers(c *gin.Context) {
	includeDeleted := c.Query("includeDeleted") == "true"

	ledgers, err := h.accountService.ListLedgers(c.Request.Context(), includeDeleted)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerListResponse(ledgers))
}

// SoftDelete handles DELETE /ledgers/:ledgerId
func (h *LedgerHandler) SoftDelete(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	ledger, err := h.accountService.SoftDelete(c.Request.Context(), ledgerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerResponse(ledger))
}

// Restore handles POST /admin/ledgers/:ledgerId/restore
func (h *LedgerHandler) Restore(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	ledger, err := h.accountService.Restore(c.Request.Context(), ledgerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerResponse(ledger))
}

// HardDelete handles DELETE /admin/ledgers/:ledgerId
func (h *LedgerHandler) HardDelete(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	if err := h.accountService.HardDelete(c.Request.Context(), ledgerID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
