package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/api"
	"github.com/bcnelson/cicd-wizard/internal/archive"
	"github.com/bcnelson/cicd-wizard/internal/config"
	"github.com/bcnelson/cicd-wizard/internal/generator"
	"github.com/bcnelson/cicd-wizard/internal/generator/gemini"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/bcnelson/cicd-wizard/internal/storage"
	"github.com/bcnelson/cicd-wizard/internal/storage/memory"
	"github.com/bcnelson/cicd-wizard/internal/storage/sql"
	"github.com/bcnelson/cicd-wizard/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize generator (or file shim for testing)
	var gen generator.Generator
	if cfg.UseFileShim() {
		logger.Info("using file shim for generation", "path", cfg.Generator.FileShim)
		gen = generator.NewFileShim(cfg.Generator.FileShim)
	} else {
		if err := gemini.CheckAPIKey(cfg.Gemini.APIKey); err != nil {
			logger.Warn("generation will fail until the API key is set", "error", err)
		}
		gen = gemini.New(gemini.Options{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			MaxAttempts: cfg.Gemini.MaxAttempts,
			RetryDelay:  cfg.Gemini.RetryDelay,
			Timeout:     cfg.Gemini.Timeout,
		})
	}

	// Optional archive export
	var exporter service.Exporter
	if cfg.Archive.ExportEnabled() {
		s3, err := archive.NewS3Exporter(archive.S3Config{
			Endpoint:  cfg.Archive.S3Endpoint,
			Region:    cfg.Archive.S3Region,
			AccessKey: cfg.Archive.S3AccessKey,
			SecretKey: cfg.Archive.S3SecretKey,
			Bucket:    cfg.Archive.S3Bucket,
			UseSSL:    cfg.Archive.S3UseSSL,
		})
		if err != nil {
			logger.Error("failed to initialize archive export", "error", err)
			os.Exit(1)
		}
		exporter = s3
	}

	// Initialize services
	wizardService := service.NewWizardService(store)
	generationService, err := service.NewGenerationService(wizardService, gen, exporter, cfg.Archive.CacheSize)
	if err != nil {
		logger.Error("failed to initialize generation service", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go wizardService.RunJanitor(logging.ToContext(ctx, logger), cfg.Session.TTL, cfg.Session.PurgeInterval)

	// Create router
	router := api.NewRouter(logger, wizardService, generationService, web.Options{
		CookieSecure: cfg.Session.CookieSecure,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting CI/CD wizard", "addr", "http://"+cfg.Server.Addr(), "generator", gen.Name())

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// openStore picks the session store for the configured driver.
func openStore(cfg config.DatabaseConfig) (storage.Storage, error) {
	if cfg.UseMemory() {
		return memory.New(), nil
	}

	// Create data directory if needed (for SQLite)
	if cfg.Driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0755); err != nil {
			return nil, err
		}
	}
	return sql.New(cfg.Driver, cfg.DSN)
}
