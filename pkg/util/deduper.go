package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMark 处理中的占位值，Complete 之后被结果覆盖
const pendingMark = "1"

// Deduper 基于 Redis SETNX 的一次性锁
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce returns true if this is the first time scope+key is seen within ttl,
// false if it is a duplicate.
func (d *Deduper) AcquireOnce(ctx context.Context, scope string, key string) bool {
	ok, err := d.rdb.SetNX(ctx, dedupKey(scope, key), pendingMark, d.ttl).Result()
	if err != nil {
		// Redis 不可用时不阻止处理
		return true
	}
	return ok
}

// Release 释放锁（处理失败时允许客户端重试）
func (d *Deduper) Release(ctx context.Context, scope string, key string) {
	_ = d.rdb.Del(ctx, dedupKey(scope, key)).Err()
}

// Complete 处理成功后记录结果（例如新建资源的 id），保留原 TTL
func (d *Deduper) Complete(ctx context.Context, scope string, key string, result string) {
	_ = d.rdb.Set(ctx, dedupKey(scope, key), result, redis.KeepTTL).Err()
}

// Result 返回 Complete 记录的结果；仍在处理中或已过期时 ok 为 false
func (d *Deduper) Result(ctx context.Context, scope string, key string) (string, bool) {
	v, err := d.rdb.Get(ctx, dedupKey(scope, key)).Result()
	if err != nil || v == pendingMark {
		return "", false
	}
	return v, true
}

func dedupKey(scope, key string) string {
	return fmt.Sprintf("dedup:%s:%s", scope, key)
}
