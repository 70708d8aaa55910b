package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSessionTTL = 24 * time.Hour

// Store 按用户保存向导状态
type Store interface {
	Load(ctx context.Context, userID int) (*Wizard, error)
	Save(ctx context.Context, userID int, w *Wizard) error
	Delete(ctx context.Context, userID int) error
}

// RedisStore 把向导状态以 JSON 存在 wizard:<userID>
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(userID int) string {
	return fmt.Sprintf("wizard:%d", userID)
}

// Load 没有会话时返回一个新的向导
func (s *RedisStore) Load(ctx context.Context, userID int) (*Wizard, error) {
	data, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard session: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, userID int, w *Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int) error {
	if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete wizard session: %w", err)
	}
	return nil
}

// decode 损坏或越界的会话直接丢弃，从头开始
func decode(data []byte) (*Wizard, error) {
	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return New(), nil
	}
	if w.Step < SelectSections || w.Step > FinalAdjustments || len(w.Config.Sections) == 0 {
		return New(), nil
	}
	return &w, nil
}
