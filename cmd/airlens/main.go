package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airlens/airlens/internal/airwave"
	"github.com/airlens/airlens/internal/api"
	"github.com/airlens/airlens/internal/config"
	"github.com/airlens/airlens/internal/provider"
	"github.com/airlens/airlens/internal/refresher"
	"github.com/airlens/airlens/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Airwave (optional)
	var bus airwave.Client
	if cfg.Airwave.URL != "" {
		ac, err := airwave.NewNATSClient(ctx, cfg.Airwave.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to airwave, running without events", "error", err)
		} else {
			bus = ac
			defer ac.Close()
			logger.Info("connected to airwave")
		}
	}

	// External air quality provider (optional)
	var providerClient provider.Client
	if cfg.Provider.URL != "" {
		providerClient = provider.NewHTTPClient(cfg.Provider.URL, cfg.Provider.APIKey)
	}

	// Refresher
	ref, err := refresher.New(db, bus, providerClient, cfg, logger)
	if err != nil {
		logger.Error("failed to build refresher", "error", err)
		os.Exit(1)
	}
	ref.Start(ctx)
	defer ref.Stop()
	logger.Info("refresher started", "tick_interval", cfg.TickInterval())

	// Subscribe to bus events for on-demand scoring and sensor bookkeeping
	ref.SetupSubscriptions()

	// API server
	router := api.NewRouter(db, bus, ref, cfg.Server.AdminToken, cfg.Server.RateLimit, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
	// ref.Stop() handled by the defer above

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
