package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/redis/go-redis/v9"
)

// luaSwapLevel stores the alert level of a ticket type and returns 1 when it
// changed. An empty level deletes the key.
// KEYS[1] = key
// ARGV[1] = level
// ARGV[2] = ttl_ms
const luaSwapLevel = `
local cur = redis.call('GET', KEYS[1])
if ARGV[1] == '' then
  if cur then
    redis.call('DEL', KEYS[1])
    return 1
  end
  return 0
end
if cur == ARGV[1] then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`

const defaultAlertLevelTTL = 24 * time.Hour

// AlertLevels is the shared memory of the low-stock watchers: of all
// instances seeing one stock change, exactly one observes the level change.
// A ticket type that stays in one level past ttl is reported again.
type AlertLevels struct {
	rdb    *redis.Client
	ttl    time.Duration
	script *redis.Script
}

func NewAlertLevels(rdb *redis.Client, ttl time.Duration) *AlertLevels {
	if ttl <= 0 {
		ttl = defaultAlertLevelTTL
	}

	return &AlertLevels{
		rdb:    rdb,
		ttl:    ttl,
		script: redis.NewScript(luaSwapLevel),
	}
}

func (a *AlertLevels) Swap(ctx context.Context, ticketTypeID string, level domain.AlertLevel) (bool, error) {
	const op = "redis.AlertLevels.Swap"

	changed, err := a.script.Run(
		ctx,
		a.rdb,
		[]string{KeyAlertLevel(ticketTypeID)},
		string(level), a.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return changed == 1, nil
}
