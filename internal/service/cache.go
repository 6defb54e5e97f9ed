package service

import (
	"baobab_academy/pkg/logger"
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// cached serves key from redis, or runs load and stores its JSON for ttl.
// A nil client or any redis failure falls through to load.
func cached[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if rdb != nil {
		val, err := rdb.Get(ctx, key).Result()
		switch {
		case err == nil:
			var out T
			if jsonErr := json.Unmarshal([]byte(val), &out); jsonErr == nil {
				return out, nil
			}
			logger.Log.Warn("Discarding corrupt cache entry", zap.String("key", key))
		case err != redis.Nil:
			logger.Log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	out, err := load()
	if err != nil || rdb == nil {
		return out, err
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

func invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
