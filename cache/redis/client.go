// Package redis implements cache.Cache on a Redis server, so cached API
// responses survive between scriptkit runs.
package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaborage/go-scriptkit/cache"
)

const pingTimeout = 5 * time.Second

// Client implements cache.Cache using Redis as the backend.
type Client struct {
	client *redis.Client
	config *Config
	closed atomic.Bool
}

var _ cache.Cache = (*Client)(nil)

// NewClient validates cfg, connects and checks the server with PING.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, cache.NewOperationError("ping", "", err)
	}

	return &Client{client: client, config: cfg}, nil
}

func (c *Client) key(key string) string {
	return c.config.prefix() + key
}

// Get returns cache.ErrNotFound if the key doesn't exist.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, cache.ErrClosed
	}

	result, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrNotFound
		}
		return nil, cache.NewOperationError("get", key, err)
	}
	return result, nil
}

// Set stores value for ttl. A ttl of 0 means no expiration.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	if ttl < 0 {
		return cache.ErrInvalidTTL
	}

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return cache.NewOperationError("set", key, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return cache.NewOperationError("delete", key, err)
	}
	return nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		return cache.NewOperationError("ping", "", err)
	}
	return nil
}

// Close is idempotent; calls after the first return cache.ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return cache.ErrClosed
	}
	return c.client.Close()
}
