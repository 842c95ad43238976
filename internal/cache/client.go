// Package cache wraps the Redis client storing Merchant Latency Records.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"go.flowcatalyst.tech/internal/rolling"
)

// Client is a typed wrapper over go-redis storing one JSON-encoded
// rolling.Record per shop_id. No TTL is set: the record is a rolling
// summary, not a cache-eviction candidate.
type Client struct {
	rdb *redis.Client
}

// New connects to the Redis instance at addr (host:port).
func New(addr string) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies connectivity, used by the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get returns the Merchant Latency Record for shopID, or rolling.ErrNotFound
// if none exists.
func (c *Client) Get(ctx context.Context, shopID string) (*rolling.Record, error) {
	raw, err := c.rdb.Get(ctx, shopID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, rolling.ErrNotFound
		}
		return nil, fmt.Errorf("cache: get %s: %w", shopID, err)
	}

	var rec rolling.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("cache: decode record for %s: %w", shopID, err)
	}
	return &rec, nil
}

// Set writes rec for shopID.
func (c *Client) Set(ctx context.Context, shopID string, rec *rolling.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: encode record for %s: %w", shopID, err)
	}
	if err := c.rdb.Set(ctx, shopID, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", shopID, err)
	}
	return nil
}
