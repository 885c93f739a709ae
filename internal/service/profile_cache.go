package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/dto"
	"github.com/streamhub/accounts/pkg/cache"
	"github.com/streamhub/accounts/pkg/logger"
	"github.com/streamhub/accounts/pkg/redis"
)

const profileCacheTTL = 5 * time.Minute

// ProfileCache caches public-safe identity views by user id. Redis-backed
// when available, in-process otherwise. Cache failures are soft: logged and
// treated as misses, never surfaced to the caller.
type ProfileCache struct {
	redisClient redis.Client
	local       *cache.Cache
}

func NewProfileCache(redisClient redis.Client) *ProfileCache {
	pc := &ProfileCache{redisClient: redisClient}
	if !redisClient.IsEnabled() {
		pc.local = cache.NewCache()
	}
	return pc
}

func profileKey(id uint) string {
	return fmt.Sprintf("%s%d", constants.CacheKeyProfile, id)
}

func (pc *ProfileCache) Get(ctx context.Context, id uint) (*dto.UserResponse, bool) {
	key := profileKey(id)

	if pc.local != nil {
		if val, ok := pc.local.Get(key); ok {
			if view, ok := val.(dto.UserResponse); ok {
				return &view, true
			}
		}
		return nil, false
	}

	raw, err := pc.redisClient.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.WarnWithContext(ctx, "Profile cache read failed").
				Uint("user_id", id).
				Err(err).
				Log()
		}
		return nil, false
	}

	var view dto.UserResponse
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		logger.WarnWithContext(ctx, "Profile cache entry malformed, dropping").
			Uint("user_id", id).
			Err(err).
			Log()
		_ = pc.redisClient.Delete(ctx, key)
		return nil, false
	}

	return &view, true
}

func (pc *ProfileCache) Set(ctx context.Context, view *dto.UserResponse) {
	key := profileKey(view.ID)

	if pc.local != nil {
		pc.local.Set(key, *view, profileCacheTTL)
		return
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return
	}

	if err := pc.redisClient.Set(ctx, key, string(raw), profileCacheTTL); err != nil {
		logger.WarnWithContext(ctx, "Profile cache write failed").
			Uint("user_id", view.ID).
			Err(err).
			Log()
	}
}

func (pc *ProfileCache) Invalidate(ctx context.Context, id uint) {
	key := profileKey(id)

	if pc.local != nil {
		pc.local.Delete(key)
		return
	}

	if err := pc.redisClient.Delete(ctx, key); err != nil {
		logger.WarnWithContext(ctx, "Profile cache invalidation failed").
			Uint("user_id", id).
			Err(err).
			Log()
	}
}
