// Package cache provides an optional Redis-backed cache for fetched source
// payloads, keeping repeat seed runs within the same TTL from re-hitting the
// upstream API.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores raw API response bodies keyed by request URL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("addr", fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)).
		Dur("ttl", cfg.TTL).
		Msg("Redis payload cache connected")

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// GetPayload returns a cached response body, or false when absent.
func (c *RedisCache) GetPayload(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, payloadKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Payload cache read failed")
		}
		return nil, false
	}
	return body, true
}

// SetPayload stores a response body with the configured TTL. Failures are
// logged and swallowed; the cache is best-effort.
func (c *RedisCache) SetPayload(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, payloadKey(key), body, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Payload cache write failed")
	}
}

// Close closes the Redis connection
func (c *RedisCache) Close() {
	if err := c.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close redis client")
	}
}

func payloadKey(url string) string {
	return "sportseed:payload:" + url
}
