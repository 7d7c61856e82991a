// Package findata provides a client for a financial-datasets style
// fundamentals API: statements, metric and price snapshots, company facts,
// insider trades, institutional ownership and analyst estimates.
package findata

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
)

// Statement periods accepted by the statement endpoints
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
	PeriodTTM       = "ttm"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMinInterval spaces requests at least interval apart. Zero disables
// throttling.
func WithMinInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(interval)
	}
}

// WithCache stores successful response bodies for ttl. A nil cache or a
// non-positive ttl disables caching.
func WithCache(cache interfaces.ResponseCache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// APIError represents a non-200 response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("findata API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError is returned when the API answers 429 or the local limiter
// cannot grant a slot before the context ends.
type RateLimitError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("findata rate limit exceeded, retry after %v", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}
