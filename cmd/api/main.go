package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/epiwatch/epiwatch/internal/adapters/engine"
	"github.com/epiwatch/epiwatch/internal/adapters/http"
	natsadapter "github.com/epiwatch/epiwatch/internal/adapters/nats"
	"github.com/epiwatch/epiwatch/internal/adapters/postgres"
	"github.com/epiwatch/epiwatch/internal/adapters/valkey"
	"github.com/epiwatch/epiwatch/internal/core/ports"
	"github.com/epiwatch/epiwatch/internal/core/usecases"
	"github.com/epiwatch/epiwatch/internal/pkg/config"
	"github.com/epiwatch/epiwatch/internal/pkg/logging"
	"github.com/epiwatch/epiwatch/internal/pkg/metrics"
	"github.com/epiwatch/epiwatch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("epiwatch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.SetupFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. Optional: the API degrades to uncached reads without it.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS. Optional: report fan-out is skipped without it.
	var pubSvc ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		pubSvc = nc
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Prediction engine client
	engineClient := engine.NewClient(cfg.Engine.URL,
		time.Duration(cfg.Engine.TimeoutSeconds)*time.Second, slog.Default())

	// Repos
	outbreakRepo := postgres.NewOutbreakRepo(db)
	alertRepo := postgres.NewAlertRepo(db)

	// Use cases
	spreadSvc := usecases.NewSpreadService(outbreakRepo, engineClient)
	reportSvc := usecases.NewReportService(outbreakRepo, cacheSvc, pubSvc)
	alertSvc := usecases.NewAlertService(alertRepo)

	deps := &http.Dependencies{
		Spread:  spreadSvc,
		Reports: reportSvc,
		Alerts:  alertSvc,
		Engine:  engineClient,
		NATS:    natsConn,
		DB:      db,
		Cache:   cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "EpiWatch API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Sample connection pool stats for /metrics
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
