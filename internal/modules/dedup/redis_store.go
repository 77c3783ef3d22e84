// README: Redis-backed dedup store for horizontally scaled deployments.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dedup:turn:"

// RedisStore keeps the same contract as MemoryStore against a shared
// key-value store, so multiple instances dedupe consistently.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Record(ctx context.Context, key string, decision []byte) error {
	return s.client.Set(ctx, keyPrefix+key, decision, s.ttl).Err()
}
