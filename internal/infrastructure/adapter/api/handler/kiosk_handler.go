package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	settlementUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/settlement"
	tabUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/tab"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/dto"
)

// KioskHandler handles the self-service endpoints used from the coffee
// machine tablet: tab taps and settlement requests
type KioskHandler struct {
	tabService        *tabUseCase.Service
	settlementService *settlementUseCase.Service
	logger            coreport.Logger
}

// NewKioskHandler creates a new kiosk handler instance
func NewKioskHandler(
	tabService *tabUseCase.Service,
	settlementService *settlementUseCase.Service,
	logger coreport.Logger,
) *KioskHandler {
	return &KioskHandler{
		tabService:        tabService,
		settlementService: settlementService,
		logger:            logger,
	}
}

// IncrementTab handles POST /ledgers/:ledgerId/tab/increment
func (h *KioskHandler) IncrementTab(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	ledger, err := h.tabService.Increment(c.Request.Context(), ledgerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerResponse(ledger))
}

// DecrementTab handles POST /ledgers/:ledgerId/tab/decrement
func (h *KioskHandler) DecrementTab(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	ledger, err := h.tabService.Decrement(c.Request.Context(), ledgerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLedgerResponse(ledger))
}

// RequestSettlement handles POST /ledgers/:ledgerId/settlement
func (h *KioskHandler) RequestSettlement(c *gin.Context) {
	ledgerID, ok := parseLedgerID(c)
	if !ok {
		return
	}

	result, err := h.settlementService.RequestSettlement(c.Request.Context(), ledgerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SettlementResponse{
		Ledger:           dto.NewLedgerResponse(result.Ledger),
		TotalCost:        centsString(result.TotalCost),
		CreditApplied:    centsString(result.CreditApplied),
		AmountToPay:      centsString(result.AmountToPay),
		NotificationSent: result.NotificationSent,
	})
}
