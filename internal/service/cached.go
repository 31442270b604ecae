package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"welearn/internal/domain"
	"welearn/internal/logger"

	"go.uber.org/zap"
)

// getCachedJSON decodes key into out. It reports false on a miss, a nil
// cache or any cache failure; callers fall back to the database.
func getCachedJSON(ctx context.Context, cache domain.Cache, key string, out interface{}) bool {
	if cache == nil {
		return false
	}
	raw, err := cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Get().Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func putCachedJSON(ctx context.Context, cache domain.Cache, key string, value interface{}, ttl time.Duration) {
	if cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Get().Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := cache.Set(ctx, key, string(raw), ttl); err != nil {
		logger.Get().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func invalidate(ctx context.Context, cache domain.Cache, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Get().Error("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
