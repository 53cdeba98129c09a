package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-trade-router/internal/cache"
	"github.com/aman-zulfiqar/solana-trade-router/internal/config"
	"github.com/aman-zulfiqar/solana-trade-router/internal/engine"
	"github.com/aman-zulfiqar/solana-trade-router/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trade-router/internal/server"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load configuration from environment variables
	cfg := config.Load()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Assemble the order placement engine with all router builders
	eng, err := engine.New(engine.Config{
		RPCURL:         cfg.RPCUrl,
		BroadcastURLs:  cfg.BroadcastURLs,
		JupiterBaseURL: cfg.JupiterBaseURL,
		JupiterAPIKey:  cfg.JupiterAPIKey,
		RaydiumAPIURL:  cfg.RaydiumAPIURL,
		PrivateKey:     cfg.PrivateKey,
		SkipPreflight:  cfg.SkipPreflight,
		Accelerate:     cfg.Accelerate,
		Logger:         logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create engine")
	}
	defer func() {
		_ = eng.Close()
	}()

	// Redis keeps the recent-orders list and live pub/sub feed
	orders := cache.NewRedisStore(cfg.RedisAddr)
	eng.AddSink(orders)

	// ClickHouse keeps the full order history (optional)
	if cfg.ClickHouseAddr != "" {
		ch, err := cache.NewClickHouseStore(cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
			Logger:   logger,
		})
		if err != nil {
			logger.WithError(err).Warn("clickhouse unavailable, order history disabled")
		} else {
			eng.AddSink(ch)
			defer func() {
				_ = ch.Close()
			}()
		}
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Engine:  eng,
		Orders:  orders,
		Jupiter: jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey),
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	// Create HTTP server with configuration and handlers
	srv := server.New(h, server.ServerConfig{
		Addr:    cfg.ServerAddr,
		DevMode: cfg.DevMode,
		APIKey:  cfg.APIKey,
	})

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.ServerAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
