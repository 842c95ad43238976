// Package eventproducer republishes events onto tier topics, used by the
// demotion path.
package eventproducer

import (
	"context"

	"github.com/rs/zerolog"

	"go.flowcatalyst.tech/internal/event"
)

// Producer is the subset of kafka.Producer the event producer depends on.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// EventProducer publishes an event's raw bytes to a tier topic, keyed by
// pkg_code. Failures are logged and swallowed — a demotion publish failure
// must not crash the engine nor block the current batch.
type EventProducer struct {
	producer Producer
	log      zerolog.Logger
}

// New builds an EventProducer.
func New(producer Producer, log zerolog.Logger) *EventProducer {
	return &EventProducer{producer: producer, log: log}
}

// Produce publishes e's original bytes to topic, keyed by e.PkgCode, and
// blocks until the broker acknowledges it.
func (p *EventProducer) Produce(ctx context.Context, topic string, e *event.Event) {
	if err := p.producer.Produce(ctx, topic, []byte(e.PkgCode), e.Raw()); err != nil {
		p.log.Error().
			Err(err).
			Str("pkg_code", e.PkgCode).
			Str("topic", topic).
			Msg("event producer: publish failed")
	}
}
