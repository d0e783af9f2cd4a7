package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceStore records consumed challenge nonces. Consume reports true the
// first time a key is seen within ttl.
type NonceStore interface {
	Consume(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const nonceKeyPrefix = "decentralink:auth:nonce:"

type RedisNonceStore struct {
	rdb *redis.Client
}

func NewRedisNonceStore(rdb *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{rdb: rdb}
}

func (s *RedisNonceStore) Consume(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, nonceKeyPrefix+key, 1, ttl).Result()
}

// MemoryNonceStore is the single-process fallback used when redis is not configured.
type MemoryNonceStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{
		seen: map[string]time.Time{},
		now:  time.Now,
	}
}

func (s *MemoryNonceStore) Consume(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, expiresAt := range s.seen {
		if !now.Before(expiresAt) {
			delete(s.seen, k)
		}
	}
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = now.Add(ttl)
	return true, nil
}
