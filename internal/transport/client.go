// Package transport provides the rate-limited HTTP client shared by the
// upstream API gateways.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout            time.Duration
	MaxRetries         int
	RetryWait          time.Duration // fixed backoff between attempts
	RateLimit          float64       // requests per second
	Burst              int
	CircuitBreakerMax  int           // max consecutive failures before circuit break
	CircuitResetAfter  time.Duration // cooldown before an open circuit lets a probe through
	InsecureSkipVerify bool
}

// DefaultHTTPClientConfig returns recommended defaults: one retry after a
// fixed two second backoff, which is how the upstream rate limiter expects
// to be treated.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           25 * time.Second,
		MaxRetries:        1,
		RetryWait:         2 * time.Second,
		RateLimit:         8.0,
		Burst:             4,
		CircuitBreakerMax: 5,
		CircuitResetAfter: 30 * time.Second,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and circuit breaker
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	circuitResetAfter time.Duration

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	lastError         error
	lastFailure       time.Time

	logger *logrus.Logger
}

// retryLogger adapts logrus to the retryablehttp logger so retry chatter
// lands at debug level.
type retryLogger struct {
	logger *logrus.Logger
}

func (l retryLogger) Printf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWait
	retryClient.RetryWaitMax = cfg.RetryWait
	retryClient.CheckRetry = customRetryPolicy()
	// hand the last response back once the retry budget is spent
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger: logger}

	if cfg.InsecureSkipVerify {
		retryClient.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	resetAfter := cfg.CircuitResetAfter
	if resetAfter <= 0 {
		resetAfter = 30 * time.Second
	}

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		circuitResetAfter: resetAfter,
		logger:            logger,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Check circuit breaker status. An open circuit half-opens once the
	// cooldown elapses and lets requests probe the upstream again.
	c.mu.Lock()
	if c.isOpen {
		if time.Since(c.lastFailure) < c.circuitResetAfter {
			lastErr := c.lastError
			c.mu.Unlock()
			return nil, fmt.Errorf("circuit breaker open: %v", lastErr)
		}
		c.logger.Debug("Circuit breaker half-open, probing upstream")
	}
	c.mu.Unlock()

	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	rreq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap request: %w", err)
	}

	// Execute request
	resp, err := c.client.Do(rreq)

	// Update circuit breaker state
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		c.lastFailure = time.Now()
		if c.consecutiveErrors >= c.circuitBreakerMax {
			if !c.isOpen {
				c.logger.WithError(err).Warnf("Circuit breaker opened after %d consecutive errors", c.consecutiveErrors)
			}
			c.isOpen = true
		}
		return nil, err
	}

	// Reset circuit breaker on success
	if resp.StatusCode < 500 {
		c.consecutiveErrors = 0
		c.isOpen = false
	}

	return resp, nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			// Retry on network errors
			return true, err
		}

		// Retry on rate limit (429) and server errors (500, 502, 503, 504)
		if resp.StatusCode == 429 || resp.StatusCode == 500 || resp.StatusCode == 502 || resp.StatusCode == 503 || resp.StatusCode == 504 {
			return true, nil
		}

		// Don't retry on other client errors
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return false, nil
		}

		return false, nil
	}
}
