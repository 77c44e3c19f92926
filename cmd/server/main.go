package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clothshop/backend/internal/application/assistant"
	appexpense "github.com/clothshop/backend/internal/application/expense"
	"github.com/clothshop/backend/internal/application/ledger"
	"github.com/clothshop/backend/internal/application/report"
	"github.com/clothshop/backend/internal/infrastructure/auth"
	"github.com/clothshop/backend/internal/infrastructure/cache"
	"github.com/clothshop/backend/internal/infrastructure/config"
	"github.com/clothshop/backend/internal/infrastructure/logger"
	"github.com/clothshop/backend/internal/infrastructure/persistence"
	"github.com/clothshop/backend/internal/infrastructure/storage"
	"github.com/clothshop/backend/internal/infrastructure/telemetry"
	"github.com/clothshop/backend/internal/interfaces/http/handler"
	"github.com/clothshop/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	if level, lerr := logger.ParseLevel(cfg.Log.Level); lerr == nil {
		if core := providers.LogCore(level); core != nil {
			if exported, err := logger.New(logCfg, core); err == nil {
				log = exported
			}
		}
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting cloth shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == config.DriverSQLite {
		// postgres schemas come from cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if providers.TracingEnabled() {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, cfg.Telemetry.DBSlowQueryThresh, log); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}
	log.Info("Database connected")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	metrics, err := telemetry.NewLedgerMetrics(providers.Meter(telemetry.LedgerMeterName))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	ledgerOpts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithRecorder(metrics),
		ledger.WithRejectBelowCost(cfg.Ledger.RejectBelowCost),
	}
	if cfg.Ledger.DistributedLock {
		if redisClient == nil {
			log.Fatal("ledger.distributed_lock requires redis.enabled")
		}
		ledgerOpts = append(ledgerOpts, ledger.WithLocker(cache.NewRedisTenantLocker(redisClient, cfg.Ledger.LockTTL, log)))
	}
	lg := ledger.New(
		persistence.NewGormTransactionScope(db.DB),
		persistence.NewLedgerRepositories(db.DB),
		ledgerOpts...,
	)

	var objectStore report.ObjectStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ReportStore(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to create report store", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err))
		}
		objectStore = s3Store
	}

	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	expenses := appexpense.NewService(expenseRepo, log)
	reports := report.NewService(lg, expenseRepo, objectStore, log)

	var agent *assistant.Agent
	if cfg.Assistant.Enabled() {
		interpreter, err := assistant.NewOpenAIInterpreter(cfg.Assistant.OpenAIAPIKey, cfg.Assistant.Model)
		if err != nil {
			log.Fatal("Failed to create assistant", zap.Error(err))
		}
		agent = assistant.NewAgent(interpreter, assistant.NewLedgerRegistry(lg), cfg.Assistant.MaxRounds, log)
		log.Info("Assistant enabled")
	}

	idempotency := cache.NewIdempotencyStore(redisClient, log)
	opts := router.Options{
		Logger:           log,
		ServiceName:      cfg.Telemetry.ServiceName,
		Tracing:          providers.TracingEnabled(),
		Idempotency:      idempotency,
		IdempotencyTTL:   cfg.HTTP.IdempotencyTTL,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
	}
	if cfg.JWT.Enabled {
		opts.Verifier = auth.NewTenantVerifier(cfg.JWT)
	}

	engine := router.New(opts,
		handler.NewHealthHandler(db.DB),
		handler.NewVarietyHandler(lg),
		handler.NewSaleHandler(lg),
		handler.NewSupplierHandler(lg),
		handler.NewStockHandler(lg),
		handler.NewConsignmentHandler(lg),
		handler.NewLoanHandler(lg),
		handler.NewExpenseHandler(expenses),
		handler.NewReportHandler(reports),
		handler.NewAssistantHandler(agent),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	if errorLog, err := zap.NewStdLogAt(log, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = errorLog
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := idempotency.Close(); err != nil {
		log.Warn("Failed to close idempotency store", zap.Error(err))
	}
	log.Info("Server exited")
}
