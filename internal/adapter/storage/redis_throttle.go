package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const throttleKeyPrefix = "throttle:"

// reserveSlotScript reserves the next call slot for a provider key and
// returns how many milliseconds the caller must wait for it. Running
// it atomically in Redis lets overlapping pipeline instances share one
// rate-limit budget.
var reserveSlotScript = redis.NewScript(`
local key = KEYS[1]
local interval = tonumber(ARGV[1])
local now = tonumber(ARGV[2])

local at = tonumber(redis.call('GET', key) or '0')
if at < now then
	at = now
end

redis.call('SET', key, at + interval, 'PX', (at - now) + interval * 2)
return at - now
`)

// RedisThrottle enforces a minimum delay between calls to an external
// provider, across all pipeline instances sharing the Redis.
type RedisThrottle struct {
	client   *redis.Client
	interval time.Duration
	logger   zerolog.Logger
}

func NewRedisThrottle(client *redis.Client, interval time.Duration, logger zerolog.Logger) *RedisThrottle {
	return &RedisThrottle{
		client:   client,
		interval: interval,
		logger:   logger.With().Str("component", "throttle").Logger(),
	}
}

// Wait blocks until the caller owns the next call slot for key. A
// Redis failure degrades to a local full-interval sleep rather than
// failing the order.
func (t *RedisThrottle) Wait(ctx context.Context, key string) error {
	if t.interval <= 0 {
		return nil
	}

	wait := t.interval
	waitMs, err := reserveSlotScript.Run(ctx, t.client,
		[]string{throttleKeyPrefix + key},
		t.interval.Milliseconds(), time.Now().UnixMilli(),
	).Int64()
	if err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("slot reservation failed, sleeping full interval")
	} else {
		wait = time.Duration(waitMs) * time.Millisecond
	}

	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
