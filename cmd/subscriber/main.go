package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-trade-router/internal/cache"
	"github.com/aman-zulfiqar/solana-trade-router/internal/config"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// main follows the live order feed and logs each confirmed order.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	loadEnv()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down subscriber")
		cancel()
	}()

	sub := cache.NewSubscriber(cfg.RedisAddr, logger)
	defer sub.Close()

	err := sub.Subscribe(ctx, func(order *models.Order) {
		logger.WithFields(logrus.Fields{
			"tx":     order.TxID,
			"router": order.RouterName,
			"type":   order.Type,
			"mint":   order.TokenAddress,
			"sol":    order.SolAmount,
			"tokens": order.TokenAmount,
		}).Info("order")
	})
	if err != nil && err != context.Canceled {
		logger.WithError(err).Fatal("subscription ended")
	}
}
