package repository

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionBlacklist 记录已注销令牌的 jti，条目在令牌过期后失效
type SessionBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisSessionRepository struct {
	Redis  *redis.Client
	prefix string
}

func NewRedisSessionRepository(rdb *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{Redis: rdb, prefix: "session:revoked:"}
}

func (r *RedisSessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.Redis.Set(ctx, r.prefix+tokenID, 1, ttl).Err()
}

func (r *RedisSessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.Redis.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type MemorySessionRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{revoked: make(map[string]time.Time)}
}

func (r *MemorySessionRepository) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, exp := range r.revoked {
		if now.After(exp) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (r *MemorySessionRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
