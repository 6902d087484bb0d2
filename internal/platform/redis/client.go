// Package redis provides the connection behind the profile read cache. The
// cache is strictly optional: an unset URL yields a nil client and the
// service reads straight from the store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"onestack/internal/platform/config"
)

// pingTimeout bounds connectivity probes so a dead cache backend cannot
// stall startup or health checks.
const pingTimeout = 3 * time.Second

// Client embeds the go-redis client so the profile cache can consume it
// directly through its command interface.
type Client struct {
	*redis.Client
}

// New connects using the configured URL, or returns a nil client when no
// URL is set. The connection is probed once up front; a cache that cannot
// be reached at startup is a configuration error, not a degraded mode.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the cache backend is reachable. At runtime a
// failing cache only degrades reads to the store, so health surfaces it
// without failing requests.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}
