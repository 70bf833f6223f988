// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"devtogether/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient is handed to profile.WithRedis. TrackProfileView uses it for the
// viewer/profile SET NX dedupe key and to publish counted views on the analytics
// events channel.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client without dialing. While Redis is down views are counted in
// Postgres without dedupe or publishing.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}
}

// Ping backs the "redis" readiness check.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the pool on shutdown.
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
