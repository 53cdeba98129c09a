package rpc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func broadcastClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL: url,
		Retry:   RetryPolicy{Backoff: time.Millisecond, MaxAttempts: 1},
	})
}

func TestBroadcaster_RequiresClients(t *testing.T) {
	_, err := NewBroadcaster(nil, nil)
	assert.Error(t, err)
}

func TestBroadcaster_FirstSuccessWins(t *testing.T) {
	ok := sendServer(t, `{"jsonrpc":"2.0","result":"5iG6qrc3sig","id":1}`, http.StatusOK)
	bad := sendServer(t, `{"jsonrpc":"2.0","error":{"code":-32002,"message":"Blockhash not found"},"id":1}`, http.StatusOK)

	b, err := NewBroadcaster([]*Client{broadcastClient(bad.URL), broadcastClient(ok.URL)}, nil)
	require.NoError(t, err)

	sig, err := b.Send(context.Background(), "dGVzdA==", true)
	require.NoError(t, err)
	assert.Equal(t, "5iG6qrc3sig", sig)
}

func TestBroadcaster_AllRejected(t *testing.T) {
	bad1 := sendServer(t, `{"jsonrpc":"2.0","error":{"code":-32002,"message":"Blockhash not found"},"id":1}`, http.StatusOK)
	bad2 := sendServer(t, `{"jsonrpc":"2.0","error":{"code":-32003,"message":"Signature verification failure"},"id":1}`, http.StatusOK)

	b, err := NewBroadcaster([]*Client{broadcastClient(bad1.URL), broadcastClient(bad2.URL)}, nil)
	require.NoError(t, err)

	_, err = b.Send(context.Background(), "dGVzdA==", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all endpoints rejected transaction")
	assert.Contains(t, err.Error(), "Blockhash not found")
	assert.Contains(t, err.Error(), "Signature verification failure")
}

func TestBroadcaster_SingleEndpoint(t *testing.T) {
	ok := sendServer(t, `{"jsonrpc":"2.0","result":"2abcSig","id":1}`, http.StatusOK)

	b, err := NewBroadcaster([]*Client{broadcastClient(ok.URL)}, nil)
	require.NoError(t, err)

	sig, err := b.Send(context.Background(), "dGVzdA==", false)
	require.NoError(t, err)
	assert.Equal(t, "2abcSig", sig)
}
