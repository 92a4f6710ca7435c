package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// IdempotencyStore remembers the reply of an operation under a caller-chosen
// key. A key is first locked while the operation runs, then either replaced by
// the stored reply or released so the caller may retry. Keys are namespaced
// by the store.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, KeyIdem(key), lockValue, lockTTL).Result()
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, payload []byte) error {
	return s.rdb.Set(ctx, KeyIdem(key), resultPrefix+string(payload), s.ttl).Err()
}

// GetResult returns the stored reply of a finished operation. A key that is
// only locked reports false.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, KeyIdem(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	if rest, ok := strings.CutPrefix(v, resultPrefix); ok {
		return []byte(rest), true, nil
	}

	return nil, false, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, KeyIdem(key)).Err()
}
