// Package provider fetches raw payloads from the upstream weather APIs and
// normalizes them through the mapper package. All adapters share one Client
// that layers retries, exponential backoff, and a per-provider circuit
// breaker over net/http.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 2
	backoffInitial   = 250 * time.Millisecond
	backoffCap       = 10 * time.Second
	retryAfterCap    = 30 * time.Second
	maxResponseBytes = 16 << 20
)

// Client is the shared HTTP layer for provider adapters.
type Client struct {
	httpClient *http.Client
	retries    int
	logger     *slog.Logger
	clock      clockwork.Clock

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewClient builds a client. A nil httpClient gets a default with a 10s
// timeout; retries below zero falls back to the default; a nil clock uses
// real time.
func NewClient(httpClient *http.Client, retries int, logger *slog.Logger, clock clockwork.Clock) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if retries < 0 {
		retries = defaultRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		httpClient: httpClient,
		retries:    retries,
		logger:     logger,
		clock:      clock,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (c *Client) breaker(provider string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[provider]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider,
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	c.breakers[provider] = cb
	return cb
}

// call names one upstream exchange.
type call struct {
	provider  string
	operation string
	endpoint  string
	url       string
	params    url.Values
	headers   map[string]string
	capture   Capture
}

type httpResult struct {
	status  int
	headers http.Header
	body    []byte
	request *http.Request
}

// statusError carries a retryable status plus any Retry-After hint.
type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.status)
}

// getJSON performs a GET with retries and the provider's breaker, captures
// the successful exchange, and decodes the body as JSON.
func (c *Client) getJSON(ctx context.Context, req call) (any, error) {
	result, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.capture != nil {
		req.capture(capturePayload(
			req.provider, req.endpoint, c.clock.Now().UTC(),
			result.request, result.status, result.headers, string(result.body),
		))
	}

	var payload any
	if err := json.Unmarshal(result.body, &payload); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", req.provider, req.operation, ErrPayload, err)
	}
	return payload, nil
}

func (c *Client) send(ctx context.Context, req call) (*httpResult, error) {
	cb := c.breaker(req.provider)

	fullURL := req.url
	if len(req.params) > 0 {
		fullURL += "?" + req.params.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%s %s: build request: %w", req.provider, req.operation, err)
		}
		httpReq.Header.Set("Accept", "application/json")
		for key, value := range req.headers {
			httpReq.Header.Set(key, value)
		}

		raw, err := cb.Execute(func() (any, error) {
			return c.do(httpReq)
		})
		if err == nil {
			result := raw.(*httpResult)
			result.request = httpReq
			return result, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s %s: %w: circuit open", req.provider, req.operation, ErrTransient)
		}
		if errors.Is(err, ErrAuth) || errors.Is(err, ErrRequest) {
			return nil, fmt.Errorf("%s %s: %w", req.provider, req.operation, err)
		}

		var statusErr *statusError
		retryable := errors.As(err, &statusErr)
		isTimeout := !retryable

		if attempt >= c.retries {
			if retryable && statusErr.status == http.StatusTooManyRequests {
				return nil, fmt.Errorf("%s %s: %w", req.provider, req.operation, ErrRateLimited)
			}
			return nil, fmt.Errorf("%s %s: %w: %v", req.provider, req.operation, ErrTransient, err)
		}

		delay := backoffDelay(attempt)
		if retryable && statusErr.retryAfter > 0 {
			delay = statusErr.retryAfter
		}
		c.logger.Debug("retrying provider request",
			"provider", req.provider,
			"operation", req.operation,
			"attempt", attempt+1,
			"delay", delay,
			"timeout", isTimeout,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// do runs inside the circuit breaker so upstream failures trip it.
func (c *Client) do(req *http.Request) (*httpResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuth, status)
	case status == http.StatusTooManyRequests:
		return nil, &statusError{status: status, retryAfter: retryAfterDelay(resp.Header)}
	case status == http.StatusRequestTimeout || status >= 500:
		retryAfter := time.Duration(0)
		if status == http.StatusServiceUnavailable {
			retryAfter = retryAfterDelay(resp.Header)
		}
		return nil, &statusError{status: status, retryAfter: retryAfter}
	case status >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrRequest, status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return &httpResult{status: status, headers: resp.Header, body: body}, nil
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(delay):
		return nil
	}
}

func backoffDelay(attempt int) time.Duration {
	delay := backoffInitial << attempt
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}

func retryAfterDelay(headers http.Header) time.Duration {
	header := headers.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil {
		return 0
	}
	delay := time.Duration(seconds * float64(time.Second))
	if delay > retryAfterCap {
		return retryAfterCap
	}
	return delay
}
