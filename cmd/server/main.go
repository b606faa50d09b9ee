// Package main implements the entry point for the SnapLead kiosk server,
// which walks customers through the preference wizard, photo capture,
// AI analysis, and drink image generation flow, and captures their contact
// details as leads.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/snaplead-api/internal/api"
	"github.com/phrazzld/snaplead-api/internal/config"
	"github.com/phrazzld/snaplead-api/internal/delivery"
	"github.com/phrazzld/snaplead-api/internal/events"
	"github.com/phrazzld/snaplead-api/internal/platform/gemini"
	"github.com/phrazzld/snaplead-api/internal/platform/logger"
	"github.com/phrazzld/snaplead-api/internal/platform/postgres"
	"github.com/phrazzld/snaplead-api/internal/platform/storage"
	"github.com/phrazzld/snaplead-api/internal/platform/webhook"
	"github.com/phrazzld/snaplead-api/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get to finish once a
// termination signal arrives.
const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env file is fine; production sets real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *slog.Logger) error {
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := runMigrations(db); err != nil {
		return err
	}

	svc, err := buildCaptureService(cfg, db, appLogger)
	if err != nil {
		return err
	}

	router := api.NewRouter(
		api.NewCaptureHandler(svc, appLogger),
		api.NewLeadHandler(svc, appLogger),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Abandoned sessions pile up on a walk-up kiosk; sweep them periodically.
	purgeDone := make(chan struct{})
	go purgeLoop(svc, cfg.Kiosk, appLogger, purgeDone)
	defer close(purgeDone)

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-stop:
		appLogger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	appLogger.Info("server stopped")
	return nil
}

// openDatabase connects to Postgres over the pgx stdlib driver and verifies
// the connection before the server starts taking traffic.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// buildCaptureService wires the stores, webhook client, storage uploader,
// fortune rewriter, and delivery dispatcher into the capture service.
func buildCaptureService(cfg *config.Config, db *sql.DB, appLogger *slog.Logger) (*service.CaptureService, error) {
	webhookClient := webhook.NewClient(cfg.Webhooks, cfg.Storage.URL, appLogger)

	deps := service.CaptureServiceDeps{
		Leads:      postgres.NewPostgresLeadStore(db, appLogger),
		Drinks:     postgres.NewPostgresDrinkStore(db, appLogger),
		Fortunes:   postgres.NewPostgresFortuneStore(db, appLogger),
		Analyzer:   webhookClient,
		Generator:  webhookClient,
		Dispatcher: delivery.NewDispatcher(webhookClient, cfg.Kiosk.FinalMessageDelay, appLogger),
		Emitter:    events.NewInMemoryEventEmitter(appLogger),
	}

	deps.Uploader = storage.NewClient(cfg.Storage.URL, cfg.Storage.ServiceKey, cfg.Storage.Bucket, appLogger)

	rewriter, err := gemini.NewFortuneRewriter(context.Background(), cfg.LLM, appLogger)
	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		appLogger.Info("gemini API key not set, fortunes served as stored")
	case err != nil:
		return nil, fmt.Errorf("failed to create fortune rewriter: %w", err)
	default:
		deps.Rewriter = rewriter
	}

	svc, err := service.NewCaptureService(cfg.Kiosk, deps, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture service: %w", err)
	}
	return svc, nil
}

// purgeLoop drops sessions that have been idle longer than the configured
// max age, until done is closed.
func purgeLoop(svc *service.CaptureService, cfg config.KioskConfig, appLogger *slog.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if n := svc.Sessions().Purge(cfg.SessionMaxAge); n > 0 {
				appLogger.Info("purged stale sessions", slog.Int("count", n))
			}
		}
	}
}
