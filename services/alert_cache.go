package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AlertCache caches the derived alert sets per user. A miss or a cache
// outage degrades to recomputation, never to an error.
type AlertCache interface {
	Get(ctx context.Context, userID string) (*AlertSummary, bool)
	Set(ctx context.Context, userID string, summary *AlertSummary)
	Invalidate(ctx context.Context, userID string)
}

// RedisAlertCache implements AlertCache on Redis, keyed alerts:user:{id}.
// Entries are invalidated on every successful mutation and additionally
// expire on a short TTL so the time-based expiring-soon set cannot go stale.
type RedisAlertCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisAlertCache creates a Redis-backed alert cache.
func NewRedisAlertCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisAlertCache {
	return &RedisAlertCache{client: client, ttl: ttl, logger: logger}
}

func alertKey(userID string) string {
	return fmt.Sprintf("alerts:user:%s", userID)
}

func (c *RedisAlertCache) Get(ctx context.Context, userID string) (*AlertSummary, bool) {
	data, err := c.client.Get(ctx, alertKey(userID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("alert cache read failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}

	var summary AlertSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		c.logger.Debug("alert cache entry corrupt", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &summary, true
}

func (c *RedisAlertCache) Set(ctx context.Context, userID string, summary *AlertSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, alertKey(userID), data, c.ttl).Err(); err != nil {
		c.logger.Debug("alert cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (c *RedisAlertCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, alertKey(userID)).Err(); err != nil {
		c.logger.Debug("alert cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
