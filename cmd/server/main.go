package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/creatorlens/creatorlens/internal/adapters/memory"
	"github.com/creatorlens/creatorlens/internal/adapters/sqlite"
	"github.com/creatorlens/creatorlens/internal/app/services"
	"github.com/creatorlens/creatorlens/internal/config"
	"github.com/creatorlens/creatorlens/internal/contentapi"
	"github.com/creatorlens/creatorlens/internal/db"
	"github.com/creatorlens/creatorlens/internal/observability"
	"github.com/creatorlens/creatorlens/internal/server"
	"github.com/creatorlens/creatorlens/internal/server/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	))
	slog.SetDefault(log)

	ctx := context.Background()
	shutdownOtel, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		Environment:       cfg.Environment,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		log.Error("Failed to set up OpenTelemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			log.Error("Failed to shut down OpenTelemetry", "error", err)
		}
	}()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	client := contentapi.New(contentapi.Options{
		BaseURL:        cfg.Content.BaseURL,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
		RetryAttempts:  cfg.Content.RetryAttempts,
		RetryBase:      cfg.ContentRetryBase(),
		RetryMax:       cfg.ContentRetryMax(),
		RequestsPerSec: cfg.Content.RequestsPerSec,
		Logger:         log,
	})

	store := sqlite.NewSyncStore(database)
	progress := memory.NewProgressRegistry(cfg.ProgressRetention())
	syncService := services.NewSyncService(client, store, progress, services.SyncTunables{
		MaxPosts:         cfg.Sync.MaxPosts,
		BatchSize:        cfg.Sync.BatchSize,
		BatchDelay:       cfg.SyncBatchDelay(),
		BudgetTotal:      cfg.Sync.BudgetTotal,
		BudgetPerPostMin: cfg.Sync.BudgetPerPostMin,
		ReplyWindow:      cfg.ReplyWindow(),
	}, log)

	srv := server.New(log)
	srv.Use(routes.BearerAuthMiddleware(cfg.API.Token))
	srv.RegisterRouter(routes.NewOpsRoutes(database))
	srv.RegisterRouter(routes.NewSyncRoutes(syncService, store, log))
	srv.RegisterRouter(routes.NewContentRoutes(store))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
	log.Error("Closing server", "error", srv.Start(addr))
}
