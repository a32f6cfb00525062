package ratelimitredis

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

// Store implements ratelimit.Store over a Redis hash per key. Keys are
// digested so addresses never reach Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, prefix: "leadgate:ratelimit:"}
}

func (s *Store) key(k string) string { return s.prefix + kernel.Digest(k) }

// consumeScript mirrors ratelimit.Decide. Returns {allowed, remaining_ms}.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local rec = redis.call('HMGET', key, 'count', 'reset_at')
local count = tonumber(rec[1])
local reset_at = tonumber(rec[2])
if count == nil or reset_at == nil or now > reset_at then
    reset_at = now + window
    redis.call('HSET', key, 'count', 1, 'reset_at', reset_at)
    redis.call('PEXPIREAT', key, reset_at + 1000)
    return {1, 0}
end
if count >= max then
    return {0, reset_at - now}
end
redis.call('HINCRBY', key, 'count', 1)
return {1, 0}
`)

func (s *Store) Consume(ctx context.Context, key string, now time.Time, p ratelimit.Policy) (ratelimit.Decision, error) {
	res, err := consumeScript.Run(ctx, s.rdb,
		[]string{s.key(key)},
		now.UnixMilli(), p.Window.Milliseconds(), p.Max,
	).Int64Slice()
	if err != nil {
		return ratelimit.Decision{}, redisErrors.NewWithCause(ErrConsume, err)
	}
	if len(res) != 2 {
		return ratelimit.Decision{}, redisErrors.New(ErrReply).WithDetail("reply", fmt.Sprint(res))
	}

	if res[0] == 1 {
		return ratelimit.Decision{Allowed: true}, nil
	}
	return ratelimit.Decision{
		RetryAfterMinutes: ratelimit.RetryAfterMinutes(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
