package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shalabh-srivastava/legalsuite/internal/config"
)

// NewRedisClient creates a Redis client for the session store and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
