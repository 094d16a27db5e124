package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// L2 is the shared external key-value tier, backed by Redis.
type L2 struct {
	client *redis.Client
	logger *zap.Logger
}

// NewL2 wraps an existing redis client.
func NewL2(client *redis.Client, logger *zap.Logger) *L2 {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &L2{client: client, logger: logger}
}

// Get returns the cached value. A tier failure (including a miss) never
// propagates: the caller always gets ok=false and proceeds to the fetch.
func (l *L2) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := l.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			l.logger.Debug("cache_l2_read_failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return v, true
}

// Set stores value under key with the given TTL. Errors are logged and
// swallowed — an L2 write failure must never fail the caller's fetch.
func (l *L2) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := l.client.Set(ctx, key, value, ttl).Err(); err != nil {
		l.logger.Debug("cache_l2_write_failed", zap.String("key", key), zap.Error(err))
	}
}
