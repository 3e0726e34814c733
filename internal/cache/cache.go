package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client and fails safe: connectivity errors behave like a
// cache miss on reads and are ignored on writes. A nil *Client is a valid,
// always-missing cache.
type Client struct {
	client *redis.Client
}

// New creates a new Redis-backed client.
func New(addr, password string, db int) *Client {
	return NewFromRedis(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// NewFromRedis wraps an existing redis client.
func NewFromRedis(rc *redis.Client) *Client {
	return &Client{client: rc}
}

// Ping reports whether Redis is reachable. Unlike the other methods it returns
// the underlying error so startup can log it.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and connectivity errors both read as a miss
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
	return nil
}

// Delete removes keys, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	_ = c.client.Del(ctx, keys...).Err()
	return nil
}

// GetJSON decodes the cached value into dst and reports whether it was found
// and decoded.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	data, _ := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v and stores it with TTL. Encoding failures are ignored like
// any other cache write failure.
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, payload, ttl)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
