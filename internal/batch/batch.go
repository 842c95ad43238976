// Package batch accumulates events between polls of the source topic.
package batch

import "go.flowcatalyst.tech/internal/event"

// Batch is an ordered, bounded accumulator of events awaiting flush.
// Owned exclusively by the poll loop; never touched by dispatch goroutines.
type Batch struct {
	limit  int
	events []*event.Event
}

// New creates a Batch bounded at limit events.
func New(limit int) *Batch {
	return &Batch{
		limit:  limit,
		events: make([]*event.Event, 0, limit),
	}
}

// Append adds a decoded event to the batch.
func (b *Batch) Append(e *event.Event) {
	b.events = append(b.events, e)
}

// Len returns the number of events currently buffered.
func (b *Batch) Len() int {
	return len(b.events)
}

// Events returns the buffered events. The returned slice is only valid
// until the next call to Reset.
func (b *Batch) Events() []*event.Event {
	return b.events
}

// Reset empties the batch after a flush.
func (b *Batch) Reset() {
	b.events = b.events[:0]
}

// ShouldFlush reports whether the batch should be flushed given the result
// of the most recent poll: the batch is full, or the poll returned nothing
// and the batch is non-empty. A batch is never flushed empty.
func (b *Batch) ShouldFlush(polledEmpty bool) bool {
	if b.Len() == 0 {
		return false
	}
	return b.Len() >= b.limit || polledEmpty
}
