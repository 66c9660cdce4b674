// Package cache provides an optional Redis cache for content scoring results.
// Scoring is deterministic, so a result can be reused for identical input.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/jonathan/aeo-insights/internal/scoring"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is used when a client is created with a non-positive TTL
const DefaultTTL = time.Hour

const keyPrefix = "aeo:score:"

// kv is the subset of the Redis API used by the cache
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Client caches score results in Redis
type Client struct {
	client kv
	ttl    time.Duration
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logging.Info("Redis score cache initialized", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return newClient(rdb, ttl), nil
}

func newClient(client kv, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Key returns the cache key for a content type and raw text
func Key(ct scoring.ContentType, rawText string) string {
	sum := sha256.Sum256([]byte(string(ct) + "\x00" + rawText))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// GetScore returns a cached result. found is false on a miss.
func (c *Client) GetScore(ctx context.Context, ct scoring.ContentType, rawText string) (*scoring.Result, bool, error) {
	data, err := c.client.Get(ctx, Key(ct, rawText)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get score cache: %w", err)
	}

	var res scoring.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached score: %w", err)
	}
	return &res, true, nil
}

// SetScore stores a result under the key of its input
func (c *Client) SetScore(ctx context.Context, ct scoring.ContentType, rawText string, res *scoring.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	if err := c.client.Set(ctx, Key(ct, rawText), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set score cache: %w", err)
	}
	return nil
}
