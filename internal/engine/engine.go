// Package engine implements the Delivery Engine: the poll/batch/fan-out
// loop, response classification, and the demotion/retry/rolling-average
// side effects it drives.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"go.flowcatalyst.tech/internal/batch"
	"go.flowcatalyst.tech/internal/event"
	"go.flowcatalyst.tech/internal/kafka"
	"go.flowcatalyst.tech/internal/mediator"
)

// Consumer is the subset of kafka.Consumer the engine depends on.
type Consumer interface {
	Poll(ctx context.Context) ([]kafka.Record, error)
}

// Mediator is the subset of mediator.Mediator the engine depends on.
type Mediator interface {
	Process(ctx context.Context, url string, body []byte, timeout time.Duration) mediator.Result
}

// Demoter publishes an event to a tier topic on transport failure.
type Demoter interface {
	Produce(ctx context.Context, topic string, e *event.Event)
}

// Retrier schedules a same-tier retry from a detached goroutine.
type Retrier interface {
	Retry(ctx context.Context, topic string, pkgCode string, status int, e *event.Event)
}

// Observer records a webhook response time for the rolling average.
type Observer interface {
	Observe(ctx context.Context, shopID string, responseTime float64)
}

// Emitter publishes best-effort observability notices.
type Emitter interface {
	Emit(ctx context.Context, message string, pkgCode string)
}

// TierPolicy computes the demotion target for the current topic.
type TierPolicy interface {
	NextTier(current string) (string, bool)
	IsTail(current string) bool
}

// Metrics is the subset of Prometheus collectors the engine observes. An
// interface so tests can assert on call counts without a registry.
type Metrics interface {
	ObserveBatchDuration(tier string, d time.Duration)
	IncDemotions(tier string)
	IncRetries(tier string)
	IncDrops(tier string)
}

// Config configures one Engine instance — the "tier configuration record"
// a trivial per-tier subclass would otherwise supply.
type Config struct {
	Topic          string
	Group          string
	RequestTimeout time.Duration
	BaseURL        string
	BatchLimit     int
}

// Engine drives one tier's poll/batch/fan-out loop.
type Engine struct {
	cfg      Config
	consumer Consumer
	mediator Mediator
	demoter  Demoter
	retrier  Retrier
	observer Observer
	emitter  Emitter
	policy   TierPolicy
	metrics  Metrics
	log      zerolog.Logger
}

// New builds an Engine for a single tier.
func New(
	cfg Config,
	consumer Consumer,
	med Mediator,
	demoter Demoter,
	retrier Retrier,
	observer Observer,
	emitter Emitter,
	policy TierPolicy,
	metrics Metrics,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		cfg:      cfg,
		consumer: consumer,
		mediator: med,
		demoter:  demoter,
		retrier:  retrier,
		observer: observer,
		emitter:  emitter,
		policy:   policy,
		metrics:  metrics,
		log:      log.With().Str("tier", cfg.Topic).Logger(),
	}
}

// Run blocks, consuming cfg.Topic under cfg.Group and delivering each event
// to its webhook, until ctx is cancelled or the consumer returns a
// non-recoverable error.
func (e *Engine) Run(ctx context.Context) error {
	b := batch.New(e.cfg.BatchLimit)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		records, err := e.consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Error().Err(err).Msg("poll error, continuing")
			continue
		}

		for _, r := range records {
			ev, err := event.Decode(r.Value)
			if err != nil {
				e.log.Warn().Err(err).Msg("dropping malformed event")
				continue
			}
			b.Append(ev)
		}

		if !b.ShouldFlush(len(records) == 0) {
			continue
		}

		e.flush(ctx, b)
		b.Reset()
	}
}

func (e *Engine) flush(ctx context.Context, b *batch.Batch) {
	start := time.Now()

	var wg sync.WaitGroup
	for _, ev := range b.Events() {
		wg.Add(1)
		go func(ev *event.Event) {
			defer wg.Done()
			e.dispatch(ctx, ev)
		}(ev)
	}
	wg.Wait()

	duration := time.Since(start)
	e.metrics.ObserveBatchDuration(e.cfg.Topic, duration)
	e.log.Info().
		Int("batch_size", b.Len()).
		Dur("duration", duration).
		Msg("batch flushed")
}

func (e *Engine) dispatch(ctx context.Context, ev *event.Event) {
	body, err := ev.WebhookBody()
	if err != nil {
		e.log.Error().Err(err).Str("pkg_code", ev.PkgCode).Msg("encode webhook body failed")
		return
	}

	url := e.cfg.BaseURL + ev.WebhookURL
	e.emitter.Emit(ctx, fmt.Sprintf("processing %s", ev.PkgCode), ev.PkgCode)

	res := e.mediator.Process(ctx, url, body, e.cfg.RequestTimeout)

	switch res.Outcome {
	case mediator.Success:
		e.emitter.Emit(ctx, fmt.Sprintf("response %d for %s", res.StatusCode, ev.PkgCode), ev.PkgCode)
		e.observer.Observe(ctx, ev.ShopID, res.Duration.Seconds())

	case mediator.Retryable:
		e.emitter.Emit(ctx, fmt.Sprintf("response %d for %s", res.StatusCode, ev.PkgCode), ev.PkgCode)
		e.observer.Observe(ctx, ev.ShopID, res.Duration.Seconds())
		e.metrics.IncRetries(e.cfg.Topic)
		e.emitter.Emit(ctx, fmt.Sprintf("retry %s after status %d", ev.PkgCode, res.StatusCode), ev.PkgCode)
		go e.retrier.Retry(context.WithoutCancel(ctx), e.cfg.Topic, ev.PkgCode, res.StatusCode, ev)

	case mediator.TransportFailure:
		e.emitter.Emit(ctx, fmt.Sprintf("timeout for %s", ev.PkgCode), ev.PkgCode)
		next, ok := e.policy.NextTier(e.cfg.Topic)
		if !ok {
			e.metrics.IncDrops(e.cfg.Topic)
			if e.policy.IsTail(e.cfg.Topic) {
				e.log.Warn().Str("pkg_code", ev.PkgCode).Msg("tail tier, dropping event")
			} else {
				e.log.Warn().Str("pkg_code", ev.PkgCode).Msg("topic not in tier ranking, dropping event")
			}
			return
		}
		e.metrics.IncDemotions(e.cfg.Topic)
		e.demoter.Produce(context.WithoutCancel(ctx), next, ev)
	}
}
