// Package transport provides the HTTP session shared by services.
package transport

import (
	"net/http"
	"time"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
	"github.com/custodia-labs/gdata/internal/logger"
)

// Verify interface compliance.
var _ driven.Transport = (*Client)(nil)

// Client sends requests without following redirects, so services can
// apply their own redirect policy, and paces them with a RateLimiter.
type Client struct {
	http    *http.Client
	limiter *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithRoundTripper replaces the underlying round tripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// WithRateLimiter replaces the rate limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a client with the given per-request timeout. A zero timeout
// means none.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: NewRateLimiter(0, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from the timeout and rate limit settings
// of cfg.
func NewFromConfig(cfg *domain.ClientConfig, opts ...Option) *Client {
	limiter := NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	return New(cfg.Timeout(), append([]Option{WithRateLimiter(limiter)}, opts...)...)
}

// Do waits for the rate limiter and sends req. Redirect responses are
// returned as is. A 429 response makes later requests back off.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		backoff := RetryAfter(resp.Header, time.Now())
		if backoff <= 0 {
			backoff = defaultBackoff
		}
		logger.Warn("Rate limited by %s, backing off %s", req.URL.Host, backoff)
		c.limiter.RecordRateLimitError(backoff)
	}
	return resp, nil
}
