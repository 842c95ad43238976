// Package kafka wraps github.com/twmb/franz-go/pkg/kgo for the tier
// worker's consume and produce needs: one consumer per tier topic, one
// shared producer for demotion, retry, and observability publishes.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Record is a decoded poll result: a raw message value and its key.
type Record struct {
	Key   []byte
	Value []byte
}

// ConsumerConfig configures a single tier-topic consumer.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	Group       string
	PollTimeout time.Duration
	MaxRecords  int
}

// Consumer polls one tier topic under one consumer group, offset reset =
// latest, auto-commit enabled, matching the source's at-most-once-for-the-
// source-topic / at-least-once-across-tiers model (demotion republishes on
// failure instead of withholding the commit).
//
// PollFetches has no per-call record-count cap, so a single fetch can
// return far more than cfg.MaxRecords. Poll enforces the cap itself,
// buffering any overflow in pending and draining it before issuing another
// fetch, so callers never see a batch larger than MaxRecords.
type Consumer struct {
	client      *kgo.Client
	pollTimeout time.Duration
	maxRecords  int
	pending     []Record
}

// NewConsumer builds and connects a Consumer for cfg.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.AutoCommitInterval(time.Second),
		kgo.DisableAutoCommitMarks(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: new consumer for topic %s group %s: %w", cfg.Topic, cfg.Group, err)
	}
	return &Consumer{client: client, pollTimeout: cfg.PollTimeout, maxRecords: cfg.MaxRecords}, nil
}

// Poll blocks for up to the configured poll timeout and returns at most
// maxRecords records, or an empty slice if none arrived. Fetch-level errors
// are returned but do not close the client; the caller should log and
// retry.
func (c *Consumer) Poll(ctx context.Context) ([]Record, error) {
	if len(c.pending) > 0 {
		records, rest := takeUpTo(c.pending, c.maxRecords)
		c.pending = rest
		return records, nil
	}

	pctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	fetches := c.client.PollFetches(pctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var firstErr error
	fetches.EachError(func(topic string, partition int32, err error) {
		// The poll timeout expiring is an empty poll, not a fetch error.
		if errors.Is(err, context.DeadlineExceeded) && pctx.Err() != nil {
			return
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("kafka: fetch error on %s[%d]: %w", topic, partition, err)
		}
	})

	var all []Record
	fetches.EachRecord(func(r *kgo.Record) {
		all = append(all, Record{Key: r.Key, Value: r.Value})
	})

	records, rest := takeUpTo(all, c.maxRecords)
	c.pending = rest
	return records, firstErr
}

// takeUpTo splits records into the first max (or all of them, if max is
// unset or records doesn't exceed it) and the remainder to carry forward.
func takeUpTo(records []Record, max int) (head, rest []Record) {
	if max <= 0 || len(records) <= max {
		return records, nil
	}
	return records[:max], records[max:]
}

// Close leaves the consumer group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
