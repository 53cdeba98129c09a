package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client is an HTTP client for Solana JSON-RPC with transient-error retry
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      RetryPolicy
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// Retry governs how transient failures and empty results are retried.
	// Zero value means DefaultRetryPolicy.
	Retry RetryPolicy

	// RequestsPerSecond caps outgoing call rate. Zero disables pacing.
	RequestsPerSecond float64

	Logger *logrus.Logger
}

// NewClient creates a new RPC client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.Backoff == 0 && cfg.Retry.Retryable == nil {
		cfg.Retry = DefaultRetryPolicy()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: cfg.BaseURL,
		retry:   cfg.Retry,
		limiter: limiter,
		logger:  cfg.Logger,
	}
}

// URL returns the endpoint this client talks to
func (c *Client) URL() string { return c.baseURL }

// Call makes a JSON-RPC call, retrying transient failures under the
// client's retry policy. Non-transient errors are returned immediately.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": c.retry.Backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retry.Backoff):
			}
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			if c.retry.ShouldRetry(err, attempt) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(resp, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}

		return nil
	}
}

// CallWithRetryValue invokes fn under the retry policy until it reports a
// present value. fn returning (false, nil) means the node answered but the
// value is not there yet, which is retried the same way as a transient error.
func (c *Client) CallWithRetryValue(ctx context.Context, label string, fn func() (bool, error)) error {
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retry.Backoff):
			}
		}

		found, err := fn()
		if err != nil {
			if c.retry.ShouldRetry(err, attempt) {
				continue
			}
			return err
		}
		if found {
			return nil
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"call":    label,
		}).Debug("empty result, retrying")
	}
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("429 Too Many Requests")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
