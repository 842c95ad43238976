package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.flowcatalyst.tech/internal/event"
)

func mustEvent(t *testing.T, pkgCode string) *event.Event {
	t.Helper()
	e, err := event.Decode([]byte(`{"pkg_code":"` + pkgCode + `","shop_id":"S1","package_status_id":1,"webhook_url":"/h"}`))
	require.NoError(t, err)
	return e
}

func TestBatch_NeverFlushesEmpty(t *testing.T) {
	b := New(2)
	assert.False(t, b.ShouldFlush(true))
	assert.False(t, b.ShouldFlush(false))
}

func TestBatch_FlushesOnThreshold(t *testing.T) {
	b := New(2)
	b.Append(mustEvent(t, "A"))
	assert.False(t, b.ShouldFlush(false))

	b.Append(mustEvent(t, "B"))
	assert.True(t, b.ShouldFlush(false))
}

func TestBatch_FlushesOnEmptyPollWithPartialBatch(t *testing.T) {
	b := New(10)
	b.Append(mustEvent(t, "A"))
	assert.False(t, b.ShouldFlush(false))
	assert.True(t, b.ShouldFlush(true))
}

func TestBatch_ResetClearsAfterFlush(t *testing.T) {
	b := New(2)
	b.Append(mustEvent(t, "A"))
	b.Append(mustEvent(t, "B"))
	require.True(t, b.ShouldFlush(false))

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.ShouldFlush(true))
}
