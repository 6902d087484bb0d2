package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"onestack/internal/progress"
	id "onestack/pkg/domain"
)

// RedisClient is the slice of go-redis used by the cache. *redis.Client
// satisfies it; tests substitute a map-backed fake.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProfileCache is a read-through cache for the GET endpoints. It is never
// authoritative: the write path always reads the store, and every successful
// update invalidates the cached profile. A nil *ProfileCache is a no-op, so
// callers need no redis-configured branch.
type ProfileCache struct {
	client RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewProfileCache(client RedisClient, ttl time.Duration, logger *slog.Logger) *ProfileCache {
	if client == nil {
		return nil
	}
	return &ProfileCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(userID id.UserID) string {
	return "onestack:profile:" + userID.String()
}

// Get returns the cached profile, or (nil, false) on miss or any redis error.
// Errors degrade to misses; the store remains the source of truth.
func (c *ProfileCache) Get(ctx context.Context, userID id.UserID) (*progress.Profile, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "profile cache read failed", "error", err, "user_id", userID.String())
		}
		return nil, false
	}
	var p progress.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.WarnContext(ctx, "profile cache entry corrupt", "error", err, "user_id", userID.String())
		return nil, false
	}
	p.UserID = userID
	return &p, true
}

// Set stores a profile snapshot. Failures are logged and ignored.
func (c *ProfileCache) Set(ctx context.Context, p *progress.Profile) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.WarnContext(ctx, "profile cache encode failed", "error", err, "user_id", p.UserID.String())
		return
	}
	if err := c.client.Set(ctx, cacheKey(p.UserID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "profile cache write failed", "error", err, "user_id", p.UserID.String())
	}
}

// Invalidate drops the cached profile after a write.
func (c *ProfileCache) Invalidate(ctx context.Context, userID id.UserID) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "profile cache invalidate failed", "error", err, "user_id", userID.String())
	}
}
