package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"busgallery/internal/cache"
	"busgallery/internal/config"
	"busgallery/internal/database"
	"busgallery/internal/database/migration"
	handlers "busgallery/internal/http/handler"
	"busgallery/internal/http/middleware"
	"busgallery/internal/logger"
	"busgallery/internal/otel"
	"busgallery/internal/repository/postgres"
	"busgallery/internal/service"
	"busgallery/internal/storage"
)

// multipartOverhead leaves room for boundaries and part headers above the file budget.
const multipartOverhead = 32 << 20

// @title Bus Gallery API
// @version 1.0
// @description Browse buses and upload their photographs.
// @BasePath /
func main() {
	if err := run(); err != nil {
		logger.Error(context.Background(), "server_exit", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env auto-loaded if present, optional CONFIG_FILE overlay)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL document store (pooled via database/sql, traced via otelsql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// S3-compatible asset store (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	var busCache service.BusListCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// The cache is optional; serve straight from the database.
			logger.Warn(ctx, "redis_unavailable", logger.Fields{"addr": cfg.Redis.Addr, "error": err.Error()})
		} else {
			defer rdb.Close()
			busCache = cache.NewBusCache(rdb, time.Duration(cfg.Redis.BusesTTLSec)*time.Second)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ingestMetrics, err := service.NewIngestMetrics(reg)
	if err != nil {
		return fmt.Errorf("register ingest metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	imageRepo := postgres.NewImagePostgres(db)
	catalogRepo := postgres.NewCatalogPostgres(db)
	ingestSvc := service.NewIngestService(objStore, imageRepo, ingestMetrics, cfg.Upload.Workers)
	catalogSvc := service.NewCatalogService(catalogRepo, imageRepo, objStore, busCache, time.Duration(cfg.MinIO.PresignTTLSec)*time.Second)

	app := fiber.New(fiber.Config{
		AppName:      "busgallery",
		ErrorHandler: handlers.ErrorHandler(),
		// Uploads are parsed from the stream, never buffered whole.
		StreamRequestBody:            true,
		DisablePreParseMultipartForm: true,
		BodyLimit:                    bodyLimit(cfg.Upload.MaxTotalSize),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:      db,
		Ingest:  ingestSvc,
		Catalog: catalogSvc,
		Upload: handlers.UploadOptions{
			MaxFileSize:  cfg.Upload.MaxFileSize,
			MaxTotalSize: cfg.Upload.MaxTotalSize,
			TempDir:      cfg.Upload.TempDir,
		},
		APIKey:   cfg.Upload.APIKey,
		Gatherer: reg,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server_listening", logger.Fields{"addr": addr})
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func bodyLimit(maxTotal int64) int {
	if maxTotal <= 0 || maxTotal > math.MaxInt32-multipartOverhead {
		return math.MaxInt32
	}
	return int(maxTotal) + multipartOverhead
}
