package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, r.Allow())
	}
	assert.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_Burst(t *testing.T) {
	r := NewRateLimiter(0.001, 2)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_Backoff(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(0, 1)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(30 * time.Second)
	assert.False(t, r.Allow())

	// A shorter back-off does not cut an existing one short.
	r.RecordRateLimitError(time.Second)
	now = now.Add(10 * time.Second)
	assert.False(t, r.Allow())

	now = now.Add(21 * time.Second)
	assert.True(t, r.Allow())
}

func TestRateLimiter_DefaultBackoff(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(0, 1)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(0)

	now = now.Add(59 * time.Second)
	assert.False(t, r.Allow())
	now = now.Add(2 * time.Second)
	assert.True(t, r.Allow())
}

func TestRateLimiter_WaitCancelledDuringBackoff(t *testing.T) {
	r := NewRateLimiter(0, 1)
	r.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "90", 90 * time.Second},
		{"http date", now.Add(2 * time.Minute).Format(http.TimeFormat), 2 * time.Minute},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, RetryAfter(h, now))
		})
	}
}
