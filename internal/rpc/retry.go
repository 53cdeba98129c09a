package rpc

import (
	"strings"
	"time"
)

// RetryPolicy decides whether a failed call is attempted again and how
// long to wait in between. It is injected into the client so callers can
// bound retries in tests while production keeps retrying until the node
// answers.
type RetryPolicy struct {
	// Backoff is the fixed delay between attempts.
	Backoff time.Duration

	// MaxAttempts bounds the number of attempts. Zero means unbounded.
	MaxAttempts int

	// Retryable classifies an error as transient. Nil means IsTransient.
	Retryable func(error) bool
}

// DefaultRetryPolicy retries transient node errors forever at one-second
// intervals.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoff:   time.Second,
		Retryable: IsTransient,
	}
}

// ShouldRetry reports whether the call that produced err should run again.
// attempt is the zero-based index of the attempt that just failed.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if p.MaxAttempts > 0 && attempt+1 >= p.MaxAttempts {
		return false
	}
	if err == nil {
		return true
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	return retryable(err)
}

var transientMarkers = []string{
	"429 too many requests",
	"too many requests",
	"connect timeout",
	"connection reset",
	"econnreset",
	"try again",
}

// IsTransient reports whether err looks like a momentary node failure
// (rate limiting, connection churn) rather than a permanent one.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
