package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lovemartco/hp-automation/internal/application/ingest"
	"github.com/lovemartco/hp-automation/internal/application/reconcile"
	"github.com/lovemartco/hp-automation/internal/domain/fulfillment"
	"github.com/lovemartco/hp-automation/internal/infrastructure/config"
	"github.com/lovemartco/hp-automation/internal/infrastructure/logger"
	"github.com/lovemartco/hp-automation/internal/infrastructure/metrics"
	"github.com/lovemartco/hp-automation/internal/infrastructure/partner"
	"github.com/lovemartco/hp-automation/internal/infrastructure/persistence"
	"github.com/lovemartco/hp-automation/internal/infrastructure/scheduler"
	"github.com/lovemartco/hp-automation/internal/infrastructure/shopify"
	"github.com/lovemartco/hp-automation/internal/interfaces/http/handler"
	"github.com/lovemartco/hp-automation/internal/interfaces/http/middleware"
	"github.com/lovemartco/hp-automation/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting hp-automation",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("ledger", cfg.Ledger.Backend),
	)

	metrics.Register()

	// Select the ledger store. The memory ledger forgets on restart, which
	// means a restarted process may resubmit recent orders; the partner
	// rejects duplicates by reference number, so this is an accepted cost of
	// the default backend.
	var ledger fulfillment.Ledger
	switch cfg.Ledger.Backend {
	case "sqlite":
		sqliteLedger, err := persistence.NewSQLiteLedger(cfg.Ledger.DSN)
		if err != nil {
			log.Fatal("Failed to open sqlite ledger", zap.Error(err))
		}
		ledger = sqliteLedger
		log.Info("Using sqlite ledger", zap.String("dsn", cfg.Ledger.DSN))
	default:
		ledger = persistence.NewMemoryLedger()
	}

	// Outbound clients
	partnerClient, err := partner.NewClient(cfg.Partner)
	if err != nil {
		log.Fatal("Failed to create partner client", zap.Error(err))
	}
	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		log.Fatal("Failed to create Shopify client", zap.Error(err))
	}

	// Application services
	ingestService := ingest.NewService(cfg.Shopify.WebhookSecret, partnerClient.Codec(), partnerClient, ledger, log)
	reconcileService := reconcile.NewService(ledger, partnerClient, shopifyClient, log)

	// Reconciliation scheduler
	var reconcileScheduler *scheduler.ReconcileScheduler
	if cfg.Scheduler.Enabled {
		reconcileScheduler, err = scheduler.NewReconcileScheduler(scheduler.Config{
			PollInterval: cfg.Scheduler.PollInterval,
			InitialDelay: cfg.Scheduler.InitialDelay,
		}, reconcileService, log)
		if err != nil {
			log.Fatal("Failed to create reconcile scheduler", zap.Error(err))
		}
		if err := reconcileScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
		}
	} else {
		log.Warn("Reconciliation scheduler disabled; shipped orders will not be fulfilled automatically")
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine)
	r.Register(router.NewSystemRoutes(handler.NewSystemHandler()))
	r.Register(router.NewWebhookRoutes(handler.NewWebhookHandler(ingestService)))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop the scheduler first so no sweep creates fulfillments while the
	// server drains.
	if reconcileScheduler != nil {
		if err := reconcileScheduler.Stop(ctx); err != nil {
			log.Warn("Reconcile scheduler did not stop cleanly", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
