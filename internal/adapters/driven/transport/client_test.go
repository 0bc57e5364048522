package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

func TestClient_DoesNotFollowRedirects(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer server.Close()

	c := New(5 * time.Second)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/feed", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/elsewhere", resp.Header.Get("Location"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_RateLimitedResponseBacksOff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	limiter := NewRateLimiter(100, 10)
	c := New(5*time.Second, WithRateLimiter(limiter))
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	assert.False(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CustomRoundTripper(t *testing.T) {
	var called bool
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody, Request: req}, nil
	})
	c := New(0, WithRoundTripper(rt))

	req, err := http.NewRequest(http.MethodDelete, "https://example.com/entry", nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewFromConfig(t *testing.T) {
	cfg := domain.DefaultClientConfig()
	cfg.TimeoutSeconds = 7
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1

	c := NewFromConfig(cfg)

	assert.Equal(t, 7*time.Second, c.http.Timeout)
	assert.True(t, c.limiter.Allow())
	assert.False(t, c.limiter.Allow(), "burst of one is spent")
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
