package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/app"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/config"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/metrics"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/nats"
	"github.com/Jeanclaudech98/Sol-txns-exporter/service/server"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	logger := app.NewLogger(cfg.SlogLevel())
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Collectors go on the default registry, which /metrics serves
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	pipeline, err := app.New(ctx, cfg, m, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()
	logger.Info("initialized solana RPC client", "endpoint", app.EndpointLabel(cfg.SolanaRPCURL))

	// NATS is optional
	var publisher nats.Publisher
	if cfg.NATSURL != "" {
		p, err := nats.NewPublisher(cfg.NATSURL, m, logger)
		if err != nil {
			logger.Error("failed to initialize NATS publisher", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	httpServer := server.New(cfg.ServerAddr, pipeline.Fetcher, publisher, m, logger).
		WithWriteTimeout(cfg.ServerWriteTimeout)

	logger.Info("server initialized, all dependencies ready",
		"redis", cfg.RedisURL != "",
		"nats", cfg.NATSURL != "",
		"ledger_timezone", cfg.LedgerTimezone,
	)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}
