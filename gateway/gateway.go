// Package gateway wraps outbound service calls with per-attempt timeouts,
// a bounded retry count, rate limiting, and cooperative cancellation. Every
// component that talks to an external service goes through it.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Common errors for gateway operations.
var (
	// ErrAttemptsExhausted is returned when every attempt failed.
	ErrAttemptsExhausted = errors.New("all request attempts failed")
	// ErrBadStatus is returned for non-2xx responses.
	ErrBadStatus = errors.New("unexpected response status")
)

// RequestSpec describes one outbound HTTP call.
type RequestSpec struct {
	Method string      // http.MethodGet or http.MethodPost
	URL    string      // Fully built request URL, query included
	Header http.Header // Extra headers (API keys etc.), may be nil
	Body   []byte      // JSON body for POST requests, nil for GET
}

// Config holds gateway tuning.
type Config struct {
	Timeout           time.Duration // Per-attempt timeout
	Retries           int           // Additional attempts after the first failure
	RequestsPerMinute int           // Rate limit across all calls (0 disables)
}

// DefaultConfig returns conservative defaults for free, rate-limited services.
func DefaultConfig() Config {
	return Config{
		Timeout:           8 * time.Second,
		Retries:           1,
		RequestsPerMinute: 60,
	}
}

// Client issues requests with the configured timeout and retry budget.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	retries int
	logger  *log.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		http:    &http.Client{},
		limiter: limiter,
		timeout: cfg.Timeout,
		retries: cfg.Retries,
		logger:  log.WithPrefix("gateway"),
	}
}

// Do issues the request described by spec. A failed attempt (network error,
// timeout, or non-2xx status) is retried with the same request and a fresh
// timeout, up to the configured retry budget. Cancelling ctx aborts the
// in-flight attempt and stops retrying immediately; per-attempt timers are
// always released.
func (c *Client) Do(ctx context.Context, spec RequestSpec) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, err := c.attempt(ctx, spec)
		if err == nil {
			return body, nil
		}
		// Caller cancellation is not a service failure; don't burn retries.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		c.logger.Warn("attempt failed",
			"method", spec.Method, "url", spec.URL,
			"attempt", attempt+1, "of", c.retries+1, "err", err)
	}

	return nil, fmt.Errorf("%w: %w", ErrAttemptsExhausted, lastErr)
}

// attempt performs a single request with its own timeout.
func (c *Client) attempt(ctx context.Context, spec RequestSpec) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if spec.Body != nil {
		bodyReader = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, spec.Method, spec.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return data, nil
}
