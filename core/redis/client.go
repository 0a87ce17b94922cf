// Package redis wraps the go-redis client used by Redis-backed stores.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	coreconfig "github.com/m3rciful/paybot/core/config"
	"github.com/m3rciful/paybot/core/logger"
)

// ErrNil reports a missing key.
var ErrNil = errors.New("redis: key not found")

// KV is the subset of Redis commands the stores rely on.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

var _ KV = (*Client)(nil)

// Client is a thin adapter over *goredis.Client that normalises redis.Nil into ErrNil.
type Client struct {
	cli *goredis.Client
}

// Connect dials Redis and verifies connectivity.
func Connect(ctx context.Context, cfg coreconfig.RedisConfig) (*Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		logger.Error(ctx, "sessions", "redis.connect",
			slog.String("host", cfg.Addr),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	logger.Info(ctx, "sessions", "redis.connect",
		slog.String("host", cfg.Addr),
		slog.Int("db", cfg.DB),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Client{cli: c}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(c *goredis.Client) *Client {
	return &Client{cli: c}
}

func (c *Client) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.cli.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNil
	}
	return v, err
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *Client) Close() error { return c.cli.Close() }
