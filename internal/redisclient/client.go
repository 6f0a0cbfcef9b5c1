package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	snapshotKeyPrefix = "cart:"
	handoffKeyPrefix  = "handoff:"
)

// Client persists per-session cart snapshots and the short-lived
// exclusive-offering handoff entries.
type Client struct {
	rdb         *redis.Client
	snapshotTTL time.Duration
	handoffTTL  time.Duration
}

// NewClient creates a Redis client. Snapshot TTL bounds how long an
// abandoned cart survives; handoff TTL is deliberately short since the entry
// is only meant to cross one navigation.
func NewClient(addr, password string, db int, snapshotTTL, handoffTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:         rdb,
		snapshotTTL: snapshotTTL,
		handoffTTL:  handoffTTL,
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// LoadSnapshot reads the persisted cart snapshot for a session. Returns nil
// bytes when no snapshot exists.
func (c *Client) LoadSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, snapshotKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}
	return data, nil
}

// SaveSnapshot writes the cart snapshot for a session.
func (c *Client) SaveSnapshot(ctx context.Context, sessionID string, data []byte) error {
	if err := c.rdb.Set(ctx, snapshotKeyPrefix+sessionID, data, c.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cart snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot drops the persisted snapshot for a session.
func (c *Client) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, snapshotKeyPrefix+sessionID).Err()
}

// PutHandoff stores an offering handoff entry for a session.
func (c *Client) PutHandoff(ctx context.Context, sessionID string, data []byte) error {
	if err := c.rdb.Set(ctx, handoffKeyPrefix+sessionID, data, c.handoffTTL).Err(); err != nil {
		return fmt.Errorf("failed to write offering handoff: %w", err)
	}
	return nil
}

// TakeHandoff reads and deletes the offering handoff entry for a session.
// Returns nil bytes when no entry exists.
func (c *Client) TakeHandoff(ctx context.Context, sessionID string) ([]byte, error) {
	key := handoffKeyPrefix + sessionID
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read offering handoff: %w", err)
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("failed to consume offering handoff: %w", err)
	}
	return data, nil
}
