// Package main is the entry point for the glucotrix API server. It serves
// glucose readings from a Dexcom Share account as AWTRIX3 display commands,
// with rate limiting and caching between the device and the Share API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/glucotrix/internal/clients/dexcom"
	"github.com/aristath/glucotrix/internal/config"
	"github.com/aristath/glucotrix/internal/display"
	"github.com/aristath/glucotrix/internal/glucose"
	"github.com/aristath/glucotrix/internal/server"
	"github.com/aristath/glucotrix/pkg/logger"
)

func main() {
	// Load configuration first to get log level.
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("region", cfg.DexcomRegion).Msg("Starting glucotrix")

	// Wire the data path: Share API client -> rate-limited cache -> HTTP API.
	shareClient := dexcom.NewClient(dexcom.Config{
		Username:  cfg.DexcomUsername,
		AccountID: cfg.DexcomAccountID,
		Password:  cfg.DexcomPassword,
		Region:    cfg.DexcomRegion,
		Timeout:   time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
	}, log)

	glucoseClient := glucose.NewClient(shareClient, log)

	srv := server.New(server.Config{
		Log:     log,
		Config:  cfg,
		Glucose: glucoseClient,
		Display: display.Format,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	// Start server in goroutine so shutdown signals can be handled below.
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Give in-flight requests up to 10 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
