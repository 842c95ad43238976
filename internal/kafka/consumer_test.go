package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTakeUpTo_SplitsAtLimit(t *testing.T) {
	records := []Record{{Key: []byte("a")}, {Key: []byte("b")}, {Key: []byte("c")}}

	head, rest := takeUpTo(records, 2)

	assert.Equal(t, records[:2], head)
	assert.Equal(t, records[2:], rest)
}

func TestTakeUpTo_NoSplitWhenUnderLimit(t *testing.T) {
	records := []Record{{Key: []byte("a")}}

	head, rest := takeUpTo(records, 5)

	assert.Equal(t, records, head)
	assert.Nil(t, rest)
}

func TestTakeUpTo_ZeroLimitMeansUnbounded(t *testing.T) {
	records := []Record{{Key: []byte("a")}, {Key: []byte("b")}}

	head, rest := takeUpTo(records, 0)

	assert.Equal(t, records, head)
	assert.Nil(t, rest)
}
