package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/handler"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	ledgerHandler *handler.LedgerHandler,
	kioskHandler *handler.KioskHandler,
	adminHandler *handler.AdminHandler,
	reportHandler *handler.ReportHandler,
) {
	// Kiosk routes, reachable from the coffee machine tablet
	ledgerRoutes := router.Group("/ledgers")
	{
		// GET /ledgers
		ledgerRoutes.GET("", ledgerHandler.ListLedgers)

		// POST /ledgers
		ledgerRoutes.POST("", ledgerHandler.CreateLedger)

		// GET /ledgers/:ledgerId
		ledgerRoutes.GET("/:ledgerId", ledgerHandler.GetLedger)

		// DELETE /ledgers/:ledgerId
		ledgerRoutes.DELETE("/:ledgerId", ledgerHandler.SoftDelete)

		// POST /ledgers/:ledgerId/tab/increment
		ledgerRoutes.POST("/:ledgerId/tab/increment", kioskHandler.IncrementTab)

		// POST /ledgers/:ledgerId/tab/decrement
		ledgerRoutes.POST("/:ledgerId/tab/decrement", kioskHandler.DecrementTab)

		// POST /ledgers/:ledgerId/settlement
		ledgerRoutes.POST("/:ledgerId/settlement", kioskHandler.RequestSettlement)
	}

	// Admin panel routes
	adminRoutes := router.Group("/admin")
	{
		// POST /admin/ledgers/:ledgerId/payments
		adminRoutes.POST("/ledgers/:ledgerId/payments", adminHandler.ConfirmPayment)

		// POST /admin/ledgers/:ledgerId/adjustment
		adminRoutes.POST("/ledgers/:ledgerId/adjustment", adminHandler.AdjustBalance)

		// GET /admin/ledgers/:ledgerId/audit
		adminRoutes.GET("/ledgers/:ledgerId/audit", adminHandler.ListAudit)

		// POST /admin/ledgers/:ledgerId/restore
		adminRoutes.POST("/ledgers/:ledgerId/restore", ledgerHandler.Restore)

		// DELETE /admin/ledgers/:ledgerId
		adminRoutes.DELETE("/ledgers/:ledgerId", ledgerHandler.HardDelete)

		// GET /admin/settings/unit-price
		adminRoutes.GET("/settings/unit-price", adminHandler.GetUnitPrice)

		// PUT /admin/settings/unit-price
		adminRoutes.PUT("/settings/unit-price", adminHandler.SetUnitPrice)
	}

	// Reporting routes
	reportRoutes := router.Group("/report")
	{
		// GET /report/summary
		reportRoutes.GET("/summary", reportHandler.GetSummary)

		// GET /report/payments
		reportRoutes.GET("/payments", reportHandler.ListPayments)

		// GET /report/payments/export
		reportRoutes.GET("/payments/export", reportHandler.ExportPayments)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
