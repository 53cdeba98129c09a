package rpc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Broadcaster submits a signed transaction to several RPC endpoints at
// once and settles on the first signature any of them returns.
type Broadcaster struct {
	clients []*Client
	logger  *logrus.Logger
}

// NewBroadcaster builds a broadcaster over the given clients. At least
// one client is required.
func NewBroadcaster(clients []*Client, logger *logrus.Logger) (*Broadcaster, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("broadcaster requires at least one client")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Broadcaster{clients: clients, logger: logger}, nil
}

// Send submits encodedTx to every endpoint concurrently. The first
// successful submission wins; the send fails only when every endpoint
// rejected the transaction, with the per-endpoint failures aggregated.
func (b *Broadcaster) Send(ctx context.Context, encodedTx string, skipPreflight bool) (string, error) {
	if len(b.clients) == 1 {
		return b.clients[0].SendRawTransaction(ctx, encodedTx, skipPreflight)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		url string
		sig string
		err error
	}

	results := make(chan outcome, len(b.clients))
	var wg sync.WaitGroup
	for _, client := range b.clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			sig, err := c.SendRawTransaction(ctx, encodedTx, skipPreflight)
			results <- outcome{url: c.URL(), sig: sig, err: err}
		}(client)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var failures []string
	for res := range results {
		if res.err == nil {
			b.logger.WithFields(logrus.Fields{
				"endpoint":  res.url,
				"signature": res.sig,
			}).Debug("transaction accepted")
			cancel()
			return res.sig, nil
		}
		if ctx.Err() != nil {
			continue
		}
		b.logger.WithFields(logrus.Fields{
			"endpoint": res.url,
			"error":    res.err,
		}).Warn("broadcast endpoint rejected transaction")
		failures = append(failures, fmt.Sprintf("%s: %v", res.url, res.err))
	}

	if err := ctx.Err(); err != nil && len(failures) == 0 {
		return "", err
	}
	return "", fmt.Errorf("all endpoints rejected transaction: %s", strings.Join(failures, "; "))
}
