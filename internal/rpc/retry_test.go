package rpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	transient := []error{
		errors.New("429 Too Many Requests"),
		errors.New("request failed: read tcp: connection reset by peer"),
		fmt.Errorf("request failed: %w", errors.New("dial tcp: connect timeout")),
		errors.New("ECONNRESET"),
		errors.New("resource temporarily unavailable, try again"),
	}
	for _, err := range transient {
		assert.True(t, IsTransient(err), "expected transient: %v", err)
	}

	permanent := []error{
		nil,
		errors.New("invalid param: WrongSize"),
		errors.New("unexpected status code: 500"),
	}
	for _, err := range permanent {
		assert.False(t, IsTransient(err), "expected permanent: %v", err)
	}
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	unbounded := DefaultRetryPolicy()
	rateLimited := errors.New("429 Too Many Requests")

	assert.True(t, unbounded.ShouldRetry(rateLimited, 0))
	assert.True(t, unbounded.ShouldRetry(rateLimited, 1000))
	assert.False(t, unbounded.ShouldRetry(errors.New("invalid param"), 0))

	bounded := RetryPolicy{MaxAttempts: 3, Retryable: IsTransient}
	assert.True(t, bounded.ShouldRetry(rateLimited, 0))
	assert.True(t, bounded.ShouldRetry(rateLimited, 1))
	assert.False(t, bounded.ShouldRetry(rateLimited, 2))
}

func TestRetryPolicy_ShouldRetry_NilErrorMeansEmptyResult(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.True(t, p.ShouldRetry(nil, 0))

	single := RetryPolicy{MaxAttempts: 1}
	assert.False(t, single.ShouldRetry(nil, 0))
}
