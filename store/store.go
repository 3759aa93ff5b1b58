// Package store 提供 core.Store 的实现：MemoryStore（进程内，带 TTL）与 RedisStore。
// 目前用作关键词扩展结果的缓存后端。
//
//	var cache core.Store = store.NewMemoryStore()
package store

import (
	"context"
	"fmt"

	"github.com/rushteam/bookrec/core"
)

// 缓存后端名称，与配置项 cache.backend 对应。
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Open 按后端名称创建缓存存储。
func Open(ctx context.Context, backend, redisAddr string, redisDB int) (core.Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, redisAddr, redisDB)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput,
			fmt.Sprintf("store: unknown backend %q", backend))
	}
}
