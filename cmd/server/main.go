package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storybook-ai/backend/pkg/config"
	"storybook-ai/backend/pkg/di"
	"storybook-ai/backend/pkg/logger"
	"storybook-ai/backend/pkg/observability"
	"storybook-ai/backend/pkg/router"
	"storybook-ai/backend/pkg/secrets"
)

func main() {
	// Loads .env on first use
	cfg := config.New()

	logConfig := logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application",
		"version", os.Getenv("APP_VERSION"),
		"env", cfg.Server.Env,
		"image_mode", cfg.Image.ResponseMode,
		"story_mode", cfg.Story.OutputMode,
	)

	if err := cfg.Validate(); err != nil {
		log.LogError(err, "Invalid configuration")
		os.Exit(1)
	}

	var shutdowns []observability.ShutdownFunc
	if cfg.Observability.TracingEnabled {
		shutdown, err := observability.SetupTracing(cfg.Observability.ServiceName, os.Stdout)
		if err != nil {
			log.LogError(err, "Failed to set up tracing")
			os.Exit(1)
		}
		shutdowns = append(shutdowns, shutdown)
	}
	if cfg.Observability.MetricsEnabled {
		shutdown, err := observability.SetupMetrics(cfg.Observability.ServiceName)
		if err != nil {
			log.LogError(err, "Failed to set up metrics")
			os.Exit(1)
		}
		shutdowns = append(shutdowns, shutdown)
	}

	secretManager, err := secrets.NewVaultManager(log, secrets.VaultConfigFromEnv())
	if err != nil {
		log.LogError(err, "Failed to initialize secrets manager")
		os.Exit(1)
	}
	defer secretManager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.New(ctx, di.Config{
		App:     cfg,
		Logger:  log,
		Secrets: secretManager,
	})
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	container.Health.Start(ctx)

	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}
	for _, shutdown := range shutdowns {
		if err := shutdown(shutdownCtx); err != nil {
			log.LogError(err, "Failed to flush telemetry")
		}
	}

	log.Info("Server exited gracefully")
}
