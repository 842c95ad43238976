// Package logemitter publishes best-effort observability records to a
// well-known Kafka topic, keyed by pkg_code.
package logemitter

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Producer is the subset of kafka.Producer the emitter depends on.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Emitter publishes processing/response/retry/timeout notices. It never
// raises into its caller: publish failures are logged and swallowed.
type Emitter struct {
	producer Producer
	topic    string
	log      zerolog.Logger
}

// New builds an Emitter publishing to topic.
func New(producer Producer, topic string, log zerolog.Logger) *Emitter {
	return &Emitter{producer: producer, topic: topic, log: log}
}

// Emit publishes message as a JSON-encoded string, keyed by pkgCode.
func (e *Emitter) Emit(ctx context.Context, message string, pkgCode string) {
	value, err := json.Marshal(message)
	if err != nil {
		e.log.Error().Err(err).Str("pkg_code", pkgCode).Msg("log emitter: encode failed")
		return
	}

	if err := e.producer.Produce(ctx, e.topic, []byte(pkgCode), value); err != nil {
		e.log.Warn().Err(err).Str("pkg_code", pkgCode).Msg("log emitter: publish failed")
	}
}
