// Package main is the entry point for the local display bridge. It runs on
// the same network as the AWTRIX3 device, polls the cloud glucose API and
// pushes the resulting display command to the device's custom app slot.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/glucotrix/internal/bridge"
	"github.com/aristath/glucotrix/pkg/logger"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to YAML config file")
		cloudURL     = flag.String("cloud-url", "", "base URL of the glucose API, e.g. https://glucose.example.com")
		deviceIP     = flag.String("device-ip", "", "IP address of the AWTRIX3 device on the local network")
		appName      = flag.String("app-name", "", "custom app name on the device")
		pollInterval = flag.Int("poll-interval", 0, "seconds between relay cycles")
		timeout      = flag.Int("timeout", 0, "HTTP timeout in seconds")
		once         = flag.Bool("once", false, "run a single relay cycle and exit")
	)
	flag.Parse()

	log := logger.New(logger.Config{Level: "info", Pretty: true})

	// Precedence: flags > config file > environment > defaults.
	cfg := &bridge.Config{}
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config file")
		}
	}
	if *cloudURL != "" {
		cfg.CloudURL = *cloudURL
	}
	if *deviceIP != "" {
		cfg.DeviceIP = *deviceIP
	}
	if *appName != "" {
		cfg.AppName = *appName
	}
	if *pollInterval > 0 {
		cfg.PollIntervalSeconds = *pollInterval
	}
	if *timeout > 0 {
		cfg.TimeoutSeconds = *timeout
	}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid bridge configuration")
	}

	log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if *once {
		bridge.New(cfg, log).RunOnce(context.Background())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop the relay loop on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("Shutting down bridge...")
		cancel()
	}()

	if err := bridge.New(cfg, log).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Bridge failed")
	}
}
