package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Redis struct {
	rd *redis.Client
}

func NewRedis(cfg RedisConfig) *Redis {
	return &Redis{rd: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rd *redis.Client) *Redis {
	return &Redis{rd: rd}
}

// Ping verifies the server is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.rd.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rd.Close()
}

func (c *Redis) Get(ctx context.Context, slug string) (string, bool, error) {
	dest, err := c.rd.Get(ctx, Key(slug)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return dest, true, nil
}

func (c *Redis) Set(ctx context.Context, slug, destination string, ttl time.Duration) error {
	return c.rd.Set(ctx, Key(slug), destination, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, slug string) error {
	return c.rd.Del(ctx, Key(slug)).Err()
}
