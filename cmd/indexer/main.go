package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/cache"
	"github.com/aman-zulfiqar/solana-trade-router/internal/config"
	"github.com/aman-zulfiqar/solana-trade-router/internal/engine"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/aman-zulfiqar/solana-trade-router/internal/stream"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	}
}

// main tails a router program (or any address) and records every swap
// it decodes into Redis and ClickHouse.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	address := flag.String("address", "", "address to watch (default: PumpFun program)")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	flag.Parse()

	cfg := config.Load()

	watch := *address
	if watch == "" {
		watch = os.Getenv("WATCH_ADDRESS")
	}
	if watch == "" {
		watch = pumpfun.ProgramID.String()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	client := rpc.NewClient(rpc.ClientConfig{
		BaseURL: cfg.RPCUrl,
		Logger:  logger,
	})

	orders := cache.NewRedisStore(cfg.RedisAddr)
	sinks := []engine.OrderSink{orders}

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
			sinks = append(sinks, ch)
			defer func() {
				_ = ch.Close()
			}()
		}
	}

	poller, err := stream.NewPoller(stream.PollerConfig{
		RPCClient:    client,
		Address:      watch,
		PollInterval: *interval,
		Logger:       logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create poller")
	}

	logger.WithField("address", watch).Info("indexer starting")

	err = poller.Start(ctx, func(order *models.Order) {
		for _, sink := range sinks {
			if err := sink.StoreOrder(order); err != nil {
				logger.WithError(err).Warn("failed to store order")
			}
		}
	})
	if err != nil && err != context.Canceled {
		logger.WithError(err).Fatal("poller stopped")
	}
}
