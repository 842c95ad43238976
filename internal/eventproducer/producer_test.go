package eventproducer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.flowcatalyst.tech/internal/event"
)

type recordingProducer struct {
	topic string
	key   []byte
	value []byte
	err   error
}

func (p *recordingProducer) Produce(_ context.Context, topic string, key, value []byte) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func mustEvent(t *testing.T) *event.Event {
	t.Helper()
	raw := []byte(`{"pkg_code":"P1","shop_id":"S1","package_status_id":5,"webhook_url":"/h"}`)
	e, err := event.Decode(raw)
	require.NoError(t, err)
	return e
}

func TestProduce_PublishesRawBytesKeyedByPkgCode(t *testing.T) {
	producer := &recordingProducer{}
	ep := New(producer, zerolog.Nop())

	ep.Produce(context.Background(), "silver_topic", mustEvent(t))

	assert.Equal(t, "silver_topic", producer.topic)
	assert.Equal(t, "P1", string(producer.key))
	assert.Equal(t, mustEvent(t).Raw(), producer.value)
}

func TestProduce_SwallowsPublishFailure(t *testing.T) {
	producer := &recordingProducer{err: errors.New("boom")}
	ep := New(producer, zerolog.Nop())

	assert.NotPanics(t, func() {
		ep.Produce(context.Background(), "silver_topic", mustEvent(t))
	})
}
