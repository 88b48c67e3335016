package authz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/pricebook/internal/pricebook/application"
	"github.com/wyfcoding/pricebook/pkg/logger"
)

// setReader Redis 集合读取接口，*redis.Client 满足该接口
type setReader interface {
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// RedisSourceRegistry 从 Redis set 加载授权来源
// 刷新失败时保留上一次成功加载的集合
type RedisSourceRegistry struct {
	client setReader
	key    string
	gauge  prometheus.Gauge

	mu      sync.RWMutex
	sources map[string]struct{}
}

var _ application.SourceAuthorizer = (*RedisSourceRegistry)(nil)

// NewRedisSourceRegistry 创建 Redis 授权来源，gauge 可以为 nil
func NewRedisSourceRegistry(client setReader, key string, gauge prometheus.Gauge) *RedisSourceRegistry {
	return &RedisSourceRegistry{
		client:  client,
		key:     key,
		gauge:   gauge,
		sources: make(map[string]struct{}),
	}
}

// IsAuthorized 判断来源是否在最近一次加载的集合中
func (r *RedisSourceRegistry) IsAuthorized(source string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sources[source]
	return ok
}

// Sources 返回授权来源（升序）
func (r *RedisSourceRegistry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.sources))
	for source := range r.sources {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

// Refresh 重新加载授权来源
func (r *RedisSourceRegistry) Refresh(ctx context.Context) error {
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return fmt.Errorf("failed to load authorized sources from %s: %w", r.key, err)
	}

	next := make(map[string]struct{}, len(members))
	for _, m := range members {
		next[m] = struct{}{}
	}

	r.mu.Lock()
	r.sources = next
	r.mu.Unlock()

	if r.gauge != nil {
		r.gauge.Set(float64(len(next)))
	}
	logger.Debug(ctx, "Authorized sources refreshed", "key", r.key, "count", len(next))
	return nil
}

// Run 按 interval 周期刷新，直到 ctx 取消
func (r *RedisSourceRegistry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				logger.Warn(ctx, "Failed to refresh authorized sources, keeping previous set", "error", err)
			}
		}
	}
}
