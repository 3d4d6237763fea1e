package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"campus/internal/pkg/logger"
	"campus/internal/pkg/redisclient"
	"campus/internal/service/reservation/domain"

	"golang.org/x/sync/singleflight"
)

const resourceCacheTTL = 10 * time.Minute

// ResourceRedisCache 用 cache-aside 策略包装 ResourceRepository。
// 资源在本服务范围内只创建不修改，适合较长的 TTL；
// singleflight 合并同一 key 的并发回源，防止缓存击穿。
// 缓存任何一步失败都降级为直接回源，不影响正确性。
type ResourceRedisCache struct {
	inner domain.ResourceRepository
	cache *redisclient.Client
	group singleflight.Group
}

func NewResourceRedisCache(inner domain.ResourceRepository, cache *redisclient.Client) *ResourceRedisCache {
	return &ResourceRedisCache{inner: inner, cache: cache}
}

func (c *ResourceRedisCache) FindByID(ctx context.Context, id, tenant string) (*domain.Resource, error) {
	key := "resource:{" + tenant + "}:" + id

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var resource domain.Resource
		if err := json.Unmarshal([]byte(raw), &resource); err == nil {
			return &resource, nil
		}
	} else if !errors.Is(err, redisclient.ErrCacheMiss) {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Resource cache read failed, falling back to store")
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		resource, err := c.inner.FindByID(ctx, id, tenant)
		if err != nil {
			// NotFound 不缓存: 资源创建后首个请求必须能看到它。
			return nil, err
		}
		if data, err := json.Marshal(resource); err == nil {
			if err := c.cache.Set(ctx, key, string(data), resourceCacheTTL); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Resource cache write failed")
			}
		}
		return resource, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Resource), nil
}
