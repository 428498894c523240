// Command kuflow-stub serves a local, in-process imitation of the KuFlow
// REST API for development and tests.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuflow/kuflow-sdk-go/internal/api"
	"github.com/kuflow/kuflow-sdk-go/internal/config"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.LogLevel, os.Getenv("ENV") != "production")

	log := logger.Get()
	log.Info().Msg("Starting KuFlow stub...")

	var st store.Store
	switch cfg.Stub.Store {
	case "redis":
		st, err = store.NewRedisStore(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
	case "memory", "":
		st = store.NewMemoryStore()
	default:
		log.Fatal().Str("store", cfg.Stub.Store).Msg("Unknown store")
	}

	opts, err := api.OptionsFromConfig(&cfg.Stub)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid stub configuration")
	}

	server := api.NewServer(st, opts)
	defer func() {
		if err := server.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	if err := server.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed stub data")
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Stub.Host, cfg.Stub.Port),
		Handler:      server,
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
		IdleTimeout:  cfg.Stub.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Str("store", cfg.Stub.Store).
			Str("tenant_id", server.TenantID().String()).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
