package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const defaultStatsTTL = 5 * time.Second

// Cache holds derived read models only. Live counters are never cached.
type Cache struct {
	rdb      *redis.Client
	sf       singleflight.Group
	statsTTL time.Duration
}

func NewCache(client *redis.Client, statsTTL time.Duration) *Cache {
	if statsTTL <= 0 {
		statsTTL = defaultStatsTTL
	}

	return &Cache{rdb: client, statsTTL: statsTTL}
}

// statsGenTTL outlives any report written under an older generation.
const statsGenTTL = 24 * time.Hour

// Stats returns the cached aggregate report of an event (all events when
// eventID is empty), loading it on a miss.
func (c *Cache) Stats(
	ctx context.Context,
	eventID string,
	loader func(ctx context.Context) (domain.Stats, error),
) (domain.Stats, error) {
	key, err := c.statsKey(ctx, eventID)
	if err != nil {
		return loader(ctx)
	}

	return GetOrSetJSON(ctx, c, key, c.statsTTL, loader)
}

// statsKey suffixes the report key with its current generation. A load that
// started before an invalidation stores its result under the old generation,
// where no later read looks.
func (c *Cache) statsKey(ctx context.Context, eventID string) (string, error) {
	gen, err := c.rdb.Get(ctx, KeyStatsGen(eventID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}

	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:g%d", KeyStats(eventID), gen), nil
}

// InvalidateStats retires the cached reports an event contributes to: its own
// and the global one.
func (c *Cache) InvalidateStats(ctx context.Context, eventID string) error {
	ids := []string{""}
	if eventID != "" {
		ids = append(ids, eventID)
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, KeyStatsGen(id))
			pipe.Expire(ctx, KeyStatsGen(id), statsGenTTL)
		}
		return nil
	})

	return err
}

func getJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var out T

	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}

	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal([]byte(s), &out); err != nil {
		// a stale encoding is treated as a miss and overwritten by the loader
		return out, false, nil
	}

	return out, true, nil
}

func setJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value under key or loads, stores and returns
// it. Concurrent misses on the same key share one loader call. Redis failures
// degrade to calling the loader directly.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok, err := getJSON[T](ctx, c, key); err == nil && ok {
		return v, nil
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok, err := getJSON[T](ctx, c, key); err == nil && ok {
			return v, nil
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		_ = setJSON(ctx, c, key, v, ttl)

		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := vAny.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected value type %T for %s", vAny, key)
	}

	return v, nil
}
