package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Strategy is one rate-limit algorithm. key identifies the caller (usually
// an IP), limit is the allowed count inside window.
type Strategy interface {
	Allow(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error)
}

type Manager struct {
	rdb      *redis.Client
	strategy Strategy
}

func NewManager(rdb *redis.Client, strategy Strategy) *Manager {
	return &Manager{rdb: rdb, strategy: strategy}
}

func (m *Manager) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.strategy.Allow(ctx, m.rdb, key, limit, window)
}

// FixedWindowStrategy counts requests in a fixed window. INCR and EXPIRE run
// in one Lua script so the window cannot be left without a TTL.
type FixedWindowStrategy struct{}

func (s *FixedWindowStrategy) Allow(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	const script = `
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call("INCR", key)
		if current == 1 then
			redis.call("EXPIRE", key, window)
		end
		if current > limit then
			return 0
		end
		return 1
	`

	result, err := rdb.Eval(ctx, script, []string{key}, limit, int(window.Seconds())).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

// SlidingWindowStrategy keeps request timestamps in a sorted set and counts
// only the ones inside the trailing window. Smoother than the fixed window
// at its boundaries.
type SlidingWindowStrategy struct{}

func (s *SlidingWindowStrategy) Allow(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	const script = `
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window_us = tonumber(ARGV[2])
		local now_us = tonumber(ARGV[3])

		redis.call("ZREMRANGEBYSCORE", key, 0, now_us - window_us)

		local current = redis.call("ZCARD", key)
		if current >= limit then
			return 0
		end

		redis.call("ZADD", key, now_us, now_us)
		redis.call("PEXPIRE", key, math.ceil(window_us / 1000))
		return 1
	`

	now := time.Now().UnixMicro()
	result, err := rdb.Eval(ctx, script, []string{key}, limit, window.Microseconds(), now).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
