// Package retry implements the Retry Arbiter: on a retryable HTTP status,
// republish the event on its current source topic subject to an external
// backoff policy.
package retry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"go.flowcatalyst.tech/internal/event"
)

// Producer is the subset of kafka.Producer the arbiter depends on.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Arbiter schedules same-tier retries. It is opaque to the engine: handed
// the producer at construction and the source topic on each Retry call, and
// never waited on — the engine invokes Retry from a detached goroutine and
// moves on to the next event.
type Arbiter struct {
	producer   Producer
	log        zerolog.Logger
	maxRetries uint64

	attempts sync.Map // pkg_code (string) -> *uint64
}

// New builds an Arbiter bounded at maxRetries attempts per pkg_code before
// giving up (0 means no cap on attempts).
func New(producer Producer, maxRetries uint64, log zerolog.Logger) *Arbiter {
	return &Arbiter{producer: producer, maxRetries: maxRetries, log: log}
}

// Retry republishes e on topic (its current source topic), waiting out one
// exponential backoff step scaled by the number of prior attempts for
// pkgCode before publishing. Intended to be invoked from a detached
// goroutine; it blocks its own goroutine, not the caller's batch.
func (a *Arbiter) Retry(ctx context.Context, topic string, pkgCode string, status int, e *event.Event) {
	attempt := a.nextAttempt(pkgCode)
	if a.maxRetries > 0 && attempt > a.maxRetries {
		a.log.Warn().
			Str("pkg_code", pkgCode).
			Int("status", status).
			Msg("retry arbiter: max retries exhausted, giving up")
		return
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	var wait time.Duration
	for i := uint64(0); i < attempt; i++ {
		wait = bo.NextBackOff()
		if wait == backoff.Stop {
			a.log.Warn().
				Str("pkg_code", pkgCode).
				Int("status", status).
				Msg("retry arbiter: max retries exhausted, giving up")
			return
		}
	}

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return
	}

	if err := a.producer.Produce(ctx, topic, []byte(pkgCode), e.Raw()); err != nil {
		a.log.Error().
			Err(err).
			Str("pkg_code", pkgCode).
			Str("topic", topic).
			Msg("retry arbiter: republish failed")
	}
}

func (a *Arbiter) nextAttempt(pkgCode string) uint64 {
	v, _ := a.attempts.LoadOrStore(pkgCode, new(uint64))
	counter := v.(*uint64)
	return atomic.AddUint64(counter, 1)
}
