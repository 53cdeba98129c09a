package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/parser"
	"github.com/aman-zulfiqar/solana-trade-router/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-trade-router/internal/raydium"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/aman-zulfiqar/solana-trade-router/internal/wallet"
	"github.com/sirupsen/logrus"
)

// MaxComputeUnitPrice is the circuit breaker on the estimated priority
// fee, in micro-lamports per compute unit. An estimate above it aborts
// the order instead of submitting at a runaway price.
const MaxComputeUnitPrice uint64 = 300_000_000

var (
	// ErrComputeUnitPriceTooHigh means the network fee estimate hit
	// the circuit breaker.
	ErrComputeUnitPriceTooHigh = errors.New("engine: compute unit price above ceiling")

	// ErrConfirmationTimeout means the submitted transaction did not
	// confirm within the polling window.
	ErrConfirmationTimeout = wallet.ErrConfirmationTimeout
)

const (
	settleDelay         = 3 * time.Second
	confirmTimeout      = 30 * time.Second
	confirmPollInterval = 2 * time.Second
)

// Config wires the engine's endpoints and wallet.
type Config struct {
	RPCURL        string
	BroadcastURLs []string

	JupiterBaseURL string
	JupiterAPIKey  string
	RaydiumAPIURL  string

	PrivateKey    string
	SkipPreflight bool

	// Accelerate multiplies the estimated compute unit price.
	// Values at or below zero mean no acceleration.
	Accelerate float64

	Logger *logrus.Logger
}

// OrderSink receives confirmed orders. Sink failures never fail the
// order.
type OrderSink interface {
	StoreOrder(order *models.Order) error
}

// Engine places swap orders end to end: build, price, sign, broadcast,
// confirm, classify.
type Engine struct {
	cfg         Config
	logger      *logrus.Logger
	client      *rpc.Client
	broadcaster *rpc.Broadcaster
	wallet      *wallet.Wallet
	dispatcher  *parser.Dispatcher
	pools       *raydium.PoolsClient
	builders    map[models.RouterType]router.Builder
	sinks       []OrderSink
}

// New assembles an engine with every router builder wired in.
func New(cfg Config) (*Engine, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("engine: RPCURL is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	client := rpc.NewClient(rpc.ClientConfig{
		BaseURL: cfg.RPCURL,
		Logger:  cfg.Logger,
	})

	endpoints := cfg.BroadcastURLs
	if len(endpoints) == 0 {
		endpoints = []string{cfg.RPCURL}
	}
	clients := make([]*rpc.Client, 0, len(endpoints))
	for _, u := range endpoints {
		clients = append(clients, rpc.NewClient(rpc.ClientConfig{
			BaseURL: u,
			Logger:  cfg.Logger,
			Retry:   rpc.RetryPolicy{Backoff: time.Second, MaxAttempts: 1},
		}))
	}
	broadcaster, err := rpc.NewBroadcaster(clients, cfg.Logger)
	if err != nil {
		return nil, err
	}

	w, err := wallet.NewWallet(wallet.WalletConfig{
		RPCURL:     cfg.RPCURL,
		PrivateKey: cfg.PrivateKey,
	})
	if err != nil {
		return nil, err
	}

	jupiterBuilder := jupiter.NewBuilder(
		jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey), client, cfg.Logger)
	pools := raydium.NewPoolsClient(cfg.RaydiumAPIURL)
	raydiumBuilder := raydium.NewBuilder(client, pools, cfg.Logger)
	pumpfunBuilder := pumpfun.NewBuilder(client, jupiterBuilder, cfg.Logger)

	return &Engine{
		cfg:         cfg,
		logger:      cfg.Logger,
		client:      client,
		broadcaster: broadcaster,
		wallet:      w,
		dispatcher:  parser.NewDispatcher(client, cfg.Logger),
		pools:       pools,
		builders: map[models.RouterType]router.Builder{
			models.RouterPumpFun: pumpfunBuilder,
			models.RouterRaydium: raydiumBuilder,
			models.RouterJupiter: jupiterBuilder,
		},
	}, nil
}

// NewFromEnv builds an engine from environment variables.
func NewFromEnv() (*Engine, error) {
	accelerate := 0.0
	if v := os.Getenv("FEE_ACCELERATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			accelerate = f
		}
	}

	var broadcastURLs []string
	if v := os.Getenv("BROADCAST_RPC_URLS"); v != "" {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				broadcastURLs = append(broadcastURLs, u)
			}
		}
	}

	return New(Config{
		RPCURL:         os.Getenv("SOLANA_RPC_URL"),
		BroadcastURLs:  broadcastURLs,
		JupiterBaseURL: os.Getenv("JUPITER_BASE_URL"),
		JupiterAPIKey:  os.Getenv("JUPITER_API_KEY"),
		RaydiumAPIURL:  os.Getenv("RAYDIUM_API_URL"),
		PrivateKey:     os.Getenv("WALLET_PRIVATE_KEY"),
		SkipPreflight:  os.Getenv("SKIP_PREFLIGHT") == "true",
		Accelerate:     accelerate,
	})
}

// AddSink registers a confirmed-order sink.
func (e *Engine) AddSink(sink OrderSink) {
	e.sinks = append(e.sinks, sink)
}

// Wallet exposes the signing wallet.
func (e *Engine) Wallet() *wallet.Wallet { return e.wallet }

// Client exposes the gateway client.
func (e *Engine) Client() *rpc.Client { return e.client }

// Dispatcher exposes the transaction classifier.
func (e *Engine) Dispatcher() *parser.Dispatcher { return e.dispatcher }

// Pools exposes the Raydium pool discovery client.
func (e *Engine) Pools() *raydium.PoolsClient { return e.pools }

// Builder returns the builder for a router.
func (e *Engine) Builder(r models.RouterType) (router.Builder, bool) {
	b, ok := e.builders[r]
	return b, ok
}

func (e *Engine) Close() error {
	return e.wallet.Close()
}
