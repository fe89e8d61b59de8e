package redis

import (
	"context"

	"github.com/omarioz/BiyoKaab/pkg/config"

	"github.com/go-redis/redis/v8"
)

// Client is an alias for the go-redis client type.
type Client = redis.Client

// NewRedisClient creates a Redis client from cfg.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	return client.Close()
}
