// Package mediator mediates the per-event webhook POST and classifies the
// outcome into success (any non-retryable status), retryable, or transport
// failure.
//
// Unlike an API gateway mediator, there is no internal retry loop here:
// retries happen by republishing to the source topic through the Retry
// Arbiter, not via a local HTTP retry, so Process makes exactly one
// attempt.
package mediator

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Outcome classifies a single webhook POST result.
type Outcome int

const (
	// Success means a response was received with a non-retryable status.
	Success Outcome = iota
	// Retryable means a response was received with a status in the
	// retryable set.
	Retryable
	// TransportFailure means no status was obtained: timeout, connection
	// error, or any other failure before a response arrived.
	TransportFailure
)

// Result is the outcome of one Process call.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Duration   time.Duration
	Err        error
}

// StatusSet is the retryable HTTP status set (STATUS_ALLOW).
type StatusSet map[int]struct{}

// NewStatusSet builds a StatusSet from a list of status codes.
func NewStatusSet(codes ...int) StatusSet {
	s := make(StatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether status is in the set.
func (s StatusSet) Contains(status int) bool {
	_, ok := s[status]
	return ok
}

// Config configures a Mediator.
type Config struct {
	// RetryableStatuses is STATUS_ALLOW.
	RetryableStatuses StatusSet

	CircuitBreakerName        string
	CircuitBreakerRequests    uint32
	CircuitBreakerInterval    time.Duration
	CircuitBreakerRatio       float64
	CircuitBreakerTimeout     time.Duration
	CircuitBreakerMinRequests uint32

	// OnCircuitBreakerStateChange is called when the breaker changes state,
	// wired to metrics/logging by the caller.
	OnCircuitBreakerStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns sensible circuit breaker defaults for a single tier.
func DefaultConfig(retryable StatusSet, tier string) Config {
	return Config{
		RetryableStatuses:         retryable,
		CircuitBreakerName:        tier,
		CircuitBreakerRequests:    10,
		CircuitBreakerInterval:    60 * time.Second,
		CircuitBreakerRatio:       0.5,
		CircuitBreakerTimeout:     5 * time.Second,
		CircuitBreakerMinRequests: 10,
	}
}

// Mediator POSTs a JSON body to a merchant webhook and classifies the
// outcome. A single Mediator serves the whole process: every batch's
// concurrent dispatches share its one http.Client/Transport for connection
// pooling, and the client is kept across flushes rather than released when
// a flush completes.
type Mediator struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	retryable StatusSet
}

// New builds a Mediator whose requests share one HTTP client/transport.
// TLS verification is disabled to match the webhook delivery contract
// (InsecureSkipVerify); a production deployment should surface this as a
// configuration knob.
func New(cfg Config) *Mediator {
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		},
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.CircuitBreakerName,
		MaxRequests: cfg.CircuitBreakerRequests,
		Interval:    cfg.CircuitBreakerInterval,
		Timeout:     cfg.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.CircuitBreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.CircuitBreakerRatio
		},
		OnStateChange: cfg.OnCircuitBreakerStateChange,
	})

	return &Mediator{client: client, breaker: breaker, retryable: cfg.RetryableStatuses}
}

// Process POSTs body to url with the given per-request timeout and
// classifies the result. It never panics and never blocks past timeout.
func (m *Mediator) Process(ctx context.Context, url string, body []byte, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := m.breaker.Execute(func() (interface{}, error) {
		return m.do(ctx, url, body)
	})
	duration := time.Since(start)

	if err != nil {
		return Result{Outcome: TransportFailure, Duration: duration, Err: err}
	}

	statusCode := res.(int)
	if m.retryable.Contains(statusCode) {
		return Result{Outcome: Retryable, StatusCode: statusCode, Duration: duration}
	}
	return Result{Outcome: Success, StatusCode: statusCode, Duration: duration}
}

func (m *Mediator) do(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("mediator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("mediator: request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return resp.StatusCode, nil
}
