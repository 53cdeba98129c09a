package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/constants"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/parser"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"

	"github.com/sirupsen/logrus"
)

// OrderHandler processes decoded orders as the poller finds them.
type OrderHandler func(*models.Order)

// Poller tails getSignaturesForAddress for a watched address and
// classifies every new confirmed transaction into an order.
type Poller struct {
	client       *rpc.Client
	address      string
	pollInterval time.Duration
	logger       *logrus.Logger

	mu            sync.RWMutex
	lastSignature string
	running       bool
}

// PollerConfig holds configuration for the signature poller
type PollerConfig struct {
	RPCClient    *rpc.Client
	Address      string
	PollInterval time.Duration
	Logger       *logrus.Logger
}

// NewPoller creates a poller watching a single address, typically a
// router program or a wallet.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.RPCClient == nil {
		return nil, fmt.Errorf("stream: rpc client is required")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("stream: watch address is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Poller{
		client:       cfg.RPCClient,
		address:      cfg.Address,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}, nil
}

// Start begins polling for new transactions
func (p *Poller) Start(ctx context.Context, handler OrderHandler) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.pollInterval,
		"address":  p.address,
	}).Info("starting signature polling")

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			if err := p.poll(ctx, handler); err != nil {
				p.logger.WithError(err).Error("poll error")
			}
		}
	}
}

// Stop stops the poller
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}

// poll fetches and classifies new transactions
func (p *Poller) poll(ctx context.Context, handler OrderHandler) error {
	opts := map[string]interface{}{
		"limit": constants.SignatureBatchSize,
	}

	p.mu.RLock()
	lastSig := p.lastSignature
	p.mu.RUnlock()

	if lastSig != "" {
		opts["until"] = lastSig
		p.logger.WithField("after", lastSig[:8]).Debug("fetching new signatures")
	}

	sigResp, err := p.client.GetSignaturesForAddress(ctx, p.address, opts)
	if err != nil {
		return fmt.Errorf("failed to get signatures: %w", err)
	}

	if len(sigResp.Result) == 0 {
		p.logger.Debug("no new transactions")
		return nil
	}

	p.logger.WithField("count", len(sigResp.Result)).Info("found new signatures")

	p.mu.Lock()
	p.lastSignature = sigResp.Result[0].Signature
	p.mu.Unlock()

	// Process each transaction with delay to avoid rate limits
	for i, sig := range sigResp.Result {
		if sig.Err != nil {
			p.logger.WithField("signature", sig.Signature[:8]).Debug("skipping failed transaction")
			continue
		}

		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(constants.DelayBetweenTxFetch):
			}
		}

		p.logger.WithFields(logrus.Fields{
			"index":     fmt.Sprintf("%d/%d", i+1, len(sigResp.Result)),
			"signature": sig.Signature[:8],
		}).Debug("processing transaction")

		tx, err := p.client.TryGetParsedTransaction(ctx, sig.Signature)
		if err != nil {
			p.logger.WithError(err).WithField("signature", sig.Signature[:8]).Warn("failed to fetch transaction")
			continue
		}
		if tx == nil {
			continue
		}

		order, err := parser.Classify(tx)
		if err != nil {
			p.logger.WithError(err).WithField("signature", sig.Signature[:8]).Warn("failed to classify transaction")
			continue
		}
		if order == nil {
			p.logger.WithField("signature", sig.Signature[:8]).Debug("not a recognized swap")
			continue
		}

		p.logger.WithFields(logrus.Fields{
			"router": order.RouterName,
			"type":   order.Type,
			"mint":   order.TokenAddress,
		}).Info("decoded order")

		handler(order)
	}

	return nil
}
