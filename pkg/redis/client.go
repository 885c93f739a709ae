package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned when a key is not present.
var ErrCacheMiss = errors.New("redis: cache miss")

// Config holds Redis client configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
}

// Client is the cache interface the rest of the service depends on. When
// Redis is disabled or unreachable the returned client is a no-op that always
// misses, so callers never need to special-case a missing cache.
type Client interface {
	IsEnabled() bool
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type redisClient struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

type disabledClient struct{}

// NewClient creates a Redis-backed client, falling back to a disabled no-op
// client when Redis is turned off or the initial ping fails.
func NewClient(cfg Config, logger *zap.Logger) Client {
	if !cfg.Enabled {
		logger.Info("Redis cache disabled by configuration")
		return disabledClient{}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis, cache disabled",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.Error(err),
		)
		_ = rdb.Close()
		return disabledClient{}
	}

	logger.Info("Successfully connected to Redis",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("database", cfg.DB),
	)

	return &redisClient{rdb: rdb, logger: logger}
}

func (c *redisClient) IsEnabled() bool {
	return true
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCacheMiss
		}
		c.logger.Error("Failed to get cache",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache",
			zap.String("key", key),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (c *redisClient) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Failed to delete cache",
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}

func (disabledClient) IsEnabled() bool { return false }

func (disabledClient) Ping(ctx context.Context) error { return nil }

func (disabledClient) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (disabledClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}

func (disabledClient) Delete(ctx context.Context, key string) error { return nil }

func (disabledClient) Close() error { return nil }
