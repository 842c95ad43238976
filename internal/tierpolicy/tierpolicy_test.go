package tierpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextTier_DemotesToNextLower(t *testing.T) {
	p := New([]string{"gold_topic", "silver_topic", "bronze_topic"})

	next, ok := p.NextTier("gold_topic")
	assert.True(t, ok)
	assert.Equal(t, "silver_topic", next)

	next, ok = p.NextTier("silver_topic")
	assert.True(t, ok)
	assert.Equal(t, "bronze_topic", next)
}

func TestNextTier_TailHasNoDemotionTarget(t *testing.T) {
	p := New([]string{"gold_topic", "silver_topic", "bronze_topic"})

	next, ok := p.NextTier("bronze_topic")
	assert.False(t, ok)
	assert.Empty(t, next)
}

func TestNextTier_UnknownTopicHasNoDemotionTarget(t *testing.T) {
	p := New([]string{"gold_topic", "silver_topic"})

	next, ok := p.NextTier("platinum_topic")
	assert.False(t, ok)
	assert.Empty(t, next)
}

func TestIsTail(t *testing.T) {
	p := New([]string{"gold_topic", "silver_topic", "bronze_topic"})

	assert.False(t, p.IsTail("gold_topic"))
	assert.False(t, p.IsTail("silver_topic"))
	assert.True(t, p.IsTail("bronze_topic"))
	assert.False(t, p.IsTail("unknown_topic"))
}
