package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/services"
	"github.com/bimakw/wallet-dashboard/internal/bootstrap"
	"github.com/bimakw/wallet-dashboard/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting wallet-dashboard refresher",
		zap.Strings("addresses", cfg.Refresher.Addresses),
		zap.Int64s("chain_ids", cfg.Refresher.ChainIDs),
		zap.Duration("interval", cfg.Refresher.Interval),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise", zap.Error(err))
	}
	defer app.Close()

	refreshService := services.NewRefreshService(app.Portfolio, app.Transactions, app.NFTs, cfg.Refresher, logger)

	// Start refresher
	if err := refreshService.Start(ctx); err != nil {
		logger.Fatal("Failed to start refresher", zap.Error(err))
	}

	// Start metrics server
	go startMetricsServer(cfg.Refresher.MetricsPort, refreshService, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping refresher...")

	// Graceful shutdown
	refreshService.Stop()

	logger.Info("Refresher stopped")
}

func startMetricsServer(port int, refresher *services.RefreshService, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(refresher.GetMetrics())
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
