package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	accountUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/account"
	reportUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/report"
	settlementUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/settlement"
	tabUseCase "github.com/coffeetab/coffeetab/internal/domain/usecase/tab"

	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/handler"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/routes"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/clock"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/database"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/logger"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/notifier"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/pricing"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/repository"
	"github.com/coffeetab/coffeetab/internal/infrastructure/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	defer appLogger.Flush()

	// Initialize time provider
	tp := clock.NewRealTimeProvider()

	// Setup and validate database configuration
	dbConfig := database.FromAppConfig(cfg)
	if err := dbConfig.Validate(); err != nil {
		appLogger.Error("Invalid database configuration", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	// Run migrations, seeding the unit price on first run
	if err := dbManager.MigrationManager().MigrateAll(cfg.Settlement.UnitPrice); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize repositories for the read paths; writes go through the
	// unit of work
	ledgerRepo := repository.NewLedgerRepository(dbManager.DB(), tp, appLogger)
	paymentRepo := repository.NewPaymentRepository(dbManager.DB(), appLogger)
	auditRepo := repository.NewAuditRepository(dbManager.DB(), appLogger)
	settingsRepo := repository.NewSettingsRepository(dbManager.DB(), tp, appLogger)

	// Unit of work (transaction manager)
	uow := dbManager.CreateUnitOfWork()

	// Notification gateway
	smtpNotifier := notifier.NewSMTPNotifier(cfg.Mail, appLogger)
	notificationGateway := notifier.FromConfig(cfg.Mail.Enabled, smtpNotifier)

	// Unit price is read live from the settings table on every tap
	priceProvider := pricing.NewSettingsPriceProvider(settingsRepo)

	// Settlement configuration
	receiveCeiling, err := entity.ParseAmount(cfg.Settlement.ReceiveCeiling)
	if err != nil {
		appLogger.Error("Invalid receive ceiling in configuration", map[string]any{
			"value": cfg.Settlement.ReceiveCeiling,
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize use cases
	settlementService := settlementUseCase.NewService(uow, notificationGateway, tp, appLogger, settlementUseCase.Config{
		ReceiveCeiling: receiveCeiling,
		NotifyTimeout:  coreport.Duration(cfg.Settlement.NotifyTimeout),
	})
	tabService := tabUseCase.NewService(uow, priceProvider, tp, appLogger)
	accountService := accountUseCase.NewService(uow, ledgerRepo, tp, appLogger)
	reportService := reportUseCase.NewService(ledgerRepo, paymentRepo, appLogger)

	// Initialize API handlers
	ledgerHandler := handler.NewLedgerHandler(accountService, appLogger)
	kioskHandler := handler.NewKioskHandler(tabService, settlementService, appLogger)
	adminHandler := handler.NewAdminHandler(settlementService, auditRepo, settingsRepo, appLogger)
	reportHandler := handler.NewReportHandler(reportService, appLogger)

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, ledgerHandler, kioskHandler, adminHandler, reportHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	// Create a deadline to wait for
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}
