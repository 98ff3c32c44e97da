// Package gateway is the single outbound HTTP path for every upstream
// provider: per-call timeout, a small fixed retry budget, and a per-client
// circuit breaker. Provider errors never escape a request as 5xx; callers
// fall back or degrade.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrStatus is wrapped into errors returned for non-2xx responses.
	ErrStatus = errors.New("unexpected status")
)

// Config holds configuration for a gateway client.
type Config struct {
	// Name identifies the client in logs and breaker state.
	Name string

	// Timeout bounds each individual HTTP call. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the retry budget after the first attempt. Retries are
	// near-immediate; upstreams here are either up or down. Default: 2.
	MaxRetries uint64

	// RetryInterval is the constant wait between attempts. Default: 250ms.
	RetryInterval time.Duration

	// UserAgent is sent on every request. Some upstreams (NWS) reject
	// requests without one.
	UserAgent string
}

// Client is a resilient HTTP client shared by all provider packages.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        Config
	logger     *slog.Logger
}

// New creates a gateway client with the given configuration.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 250 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "trailsafe (trip-safety planner)"
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		cfg:        cfg,
		logger:     logger.With("component", "gateway", "client", cfg.Name),
	}
}

// statusError marks a retryable 5xx response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.code, http.StatusText(e.code))
}

// Get fetches the URL and returns the raw body. 5xx responses and network
// errors are retried up to the budget; 4xx responses fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryInterval), c.cfg.MaxRetries),
		ctx,
	)

	var body []byte

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if reqErr != nil {
				return nil, reqErr
			}
			req.Header.Set("User-Agent", c.cfg.UserAgent)
			req.Header.Set("Accept", "application/json, text/html;q=0.5, */*;q=0.1")

			r, doErr := c.httpClient.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				_ = r.Body.Close()
				return nil, &statusError{code: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			var se *statusError
			if errors.As(err, &se) {
				return err // retryable
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err // network errors are retryable
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= 400 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return backoff.Permanent(fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, string(b)))
		}

		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		body = b
		return nil
	}

	if err := backoff.Retry(operation, bo); err != nil {
		c.logger.Debug("fetch failed", "url", url, "error", err)
		return nil, err
	}
	return body, nil
}

// GetJSON fetches the URL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// BreakerState returns the current state of the circuit breaker.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}
