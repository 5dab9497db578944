package utils

import (
	"context"
	"fmt"
	"time"

	"bookcheckout/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the checkout state database and pings it.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCheckoutDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (checkout): %w", err)
	}
	return client, nil
}
