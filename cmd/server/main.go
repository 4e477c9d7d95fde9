package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	activityapp "github.com/gatetrack/backend/internal/application/activity"
	auditapp "github.com/gatetrack/backend/internal/application/audit"
	dispatchapp "github.com/gatetrack/backend/internal/application/dispatch"
	"github.com/gatetrack/backend/internal/application/ingest"
	"github.com/gatetrack/backend/internal/application/invoiceview"
	mismatchapp "github.com/gatetrack/backend/internal/application/mismatch"
	"github.com/gatetrack/backend/internal/infrastructure/cache"
	"github.com/gatetrack/backend/internal/infrastructure/config"
	"github.com/gatetrack/backend/internal/infrastructure/event"
	"github.com/gatetrack/backend/internal/infrastructure/logger"
	"github.com/gatetrack/backend/internal/infrastructure/persistence"
	"github.com/gatetrack/backend/internal/infrastructure/storage"
	"github.com/gatetrack/backend/internal/infrastructure/telemetry"
	"github.com/gatetrack/backend/internal/interfaces/http/handler"
	"github.com/gatetrack/backend/internal/interfaces/http/middleware"
	"github.com/gatetrack/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is stamped at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting GateTrack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	if tracerProvider.IsEnabled() {
		if err := telemetry.RegisterDBTracing(db.DB, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	scheduleRepo := persistence.NewGormScheduleRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)

	// Read-view cache: Redis when configured, in-process otherwise
	viewCache, err := cache.NewViewCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize view cache", zap.Error(err))
	}

	// Upload archival is best-effort; without a bucket the archive is a no-op
	var archive ingest.FileArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3FileArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize upload archive", zap.Error(err))
		}
		archive = s3Archive
	} else {
		archive = storage.NewNoopFileArchive()
	}

	// Event bus and activity trail
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = bus.Stop(context.Background())
	}()

	// Application services
	ingestService := ingest.NewService(invoiceRepo, scheduleRepo, cfg.Audit.BinCapacities, cfg.Audit.DefaultBinCapacity, log)
	auditService := auditapp.NewService(invoiceRepo, alertRepo, log)
	mismatchService := mismatchapp.NewService(alertRepo, invoiceRepo, log)
	dispatchService := dispatchapp.NewService(invoiceRepo, alertRepo, log)
	viewService := invoiceview.NewService(invoiceRepo, scheduleRepo, viewCache, cfg.Views.CacheTTL, log)
	activityService := activityapp.NewService(activityRepo, log)

	ingestService.SetEventPublisher(bus)
	auditService.SetEventPublisher(bus)
	mismatchService.SetEventPublisher(bus)
	dispatchService.SetEventPublisher(bus)
	dispatchService.SetViewInvalidator(viewService)

	bus.Subscribe(activityapp.NewUploadRecorder(activityService, log))
	bus.Subscribe(activityapp.NewAuditRecorder(activityService, log))
	bus.Subscribe(activityapp.NewDispatchRecorder(activityService, log))

	// HTTP engine and middleware stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Actor())

	if cfg.HTTP.RateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
		engine.Use(middleware.TraceEnrich())
	}

	// Routes
	r := router.NewRouter(engine)
	r.Register(handler.NewInvoiceHandler(ingestService, viewService, archive, log)).
		Register(handler.NewScheduleHandler(ingestService)).
		Register(handler.NewAuditHandler(auditService)).
		Register(handler.NewMismatchHandler(mismatchService)).
		Register(handler.NewDispatchHandler(dispatchService)).
		Register(handler.NewActivityHandler(activityService)).
		Register(handler.NewSystemHandler(db, version))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
