package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
	reportUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/report"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/dto"
)

// ReportHandler handles the read-only reporting endpoints
type ReportHandler struct {
	reportService *reportUseCase.Service
	logger        coreport.Logger
}

// NewReportHandler creates a new report handler instance
func NewReportHandler(reportService *reportUseCase.Service, logger coreport.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// GetSummary handles GET /report/summary
func (h *ReportHandler) GetSummary(c *gin.Context) {
	summary, err := h.reportService.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SummaryResponse{
		ActiveLedgers:      summary.ActiveLedgers,
		OutstandingTab:     centsString(summary.OutstandingTab),
		OutstandingPending: centsString(summary.OutstandingPending),
		TotalCredit:        centsString(summary.TotalCredit),
		TotalRequested:     centsString(summary.TotalRequested),
		TotalReceived:      centsString(summary.TotalReceived),
	})
}

// ListPayments handles GET /report/payments
func (h *ReportHandler) ListPayments(c *gin.Context) {
	filter, ok := parsePaymentFilter(c)
	if !ok {
		return
	}

	payments, err := h.reportService.PaymentHistory(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentListResponse(payments))
}

// ExportPayments handles GET /report/payments/export, streaming the filtered
// payment history as a CSV download
func (h *ReportHandler) ExportPayments(c *gin.Context) {
	filter, ok := parsePaymentFilter(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="payments.csv"`)
	c.Status(http.StatusOK)

	if err := h.reportService.WriteHistoryCSV(c.Request.Context(), c.Writer, filter); err != nil {
		// Headers are already out; the truncated body is all we can signal with
		h.logger.Error("Failed to stream payment export", map[string]any{
			"error": err.Error(),
		})
	}
}

// parsePaymentFilter builds a PaymentFilter from query parameters. On a
// malformed parameter it writes the error response and returns false.
func parsePaymentFilter(c *gin.Context) (persistence.PaymentFilter, bool) {
	var filter persistence.PaymentFilter

	if ledgerParam := c.Query("ledgerId"); ledgerParam != "" {
		id, err := strconv.ParseUint(ledgerParam, 10, 64)
		if err != nil || id == 0 {
			respondBadQuery(c, "ledgerId must be a positive integer")
			return filter, false
		}
		filter.LedgerID = &id
	}

	if kindParam := c.Query("kind"); kindParam != "" {
		kind := entity.PaymentKind(kindParam)
		if kind != entity.PaymentRequest && kind != entity.PaymentReceived {
			respondBadQuery(c, "kind must be request or received")
			return filter, false
		}
		filter.Kind = &kind
	}

	filter.ConfirmedOnly = c.Query("confirmed") == "true"

	if sinceParam := c.Query("since"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			respondBadQuery(c, "since must be an RFC 3339 timestamp")
			return filter, false
		}
		filter.Since = &since
	}

	if untilParam := c.Query("until"); untilParam != "" {
		until, err := time.Parse(time.RFC3339, untilParam)
		if err != nil {
			respondBadQuery(c, "until must be an RFC 3339 timestamp")
			return filter, false
		}
		filter.Until = &until
	}

	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			respondBadQuery(c, "limit must be a non-negative integer")
			return filter, false
		}
		filter.Limit = limit
	}

	return filter, true
}

func respondBadQuery(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    errs.ErrorCode(errs.ErrInvalidRequest),
		Message: message,
	})
}
