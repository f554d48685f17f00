package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles outbound headline requests with a Redis sliding window
// shared by every process using the same prefix.
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines one source's budget
type RateLimitConfig struct {
	Key    string        // source name (e.g. "infomoney")
	Limit  int           // requests per window
	Window time.Duration

	// FailOpen lets requests through when Redis errors.
	// 헤드라인은 부가 정보라 Redis 장애로 막지 않음
	FailOpen bool
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // 0 when allowed
}

// Lua: ZSET of request ids scored by ms timestamp.
// Returns {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window_ms
	if oldest[2] then
		retry = tonumber(oldest[2]) + window_ms - now
	end
	return {0, 0, retry}
`)

// minRetryWait bounds Wait's sleep when the script reports no delay
const minRetryWait = 10 * time.Millisecond

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// HeadlineRateLimit builds a per-minute budget for a headline source.
// perMinute <= 0 falls back to one request per second.
func HeadlineRateLimit(key string, perMinute int) RateLimitConfig {
	if perMinute <= 0 {
		perMinute = 60
	}
	return RateLimitConfig{
		Key:      key,
		Limit:    perMinute,
		Window:   time.Minute,
		FailOpen: true,
	}
}

// Allow records one request if the window has room
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (Decision, error) {
	if r.client == nil || !r.client.Enabled() || cfg.Limit <= 0 {
		return Decision{Allowed: true, Remaining: cfg.Limit}, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now().UnixMilli()

	res, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		now,
		cfg.Window.Milliseconds(),
		cfg.Limit,
		uuid.NewString(),
	).Slice()
	if err != nil {
		if cfg.FailOpen {
			return Decision{Allowed: true}, nil
		}
		return Decision{}, fmt.Errorf("rate limit %s: %w", cfg.Key, err)
	}

	return parseDecision(res)
}

// Wait blocks until the window has room or ctx ends
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		d, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if d.Allowed {
			return nil
		}

		wait := d.RetryAfter
		if wait < minRetryWait {
			wait = minRetryWait
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func parseDecision(res []interface{}) (Decision, error) {
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit: unexpected reply %v", res)
	}
	vals := make([]int64, 3)
	for i, v := range res {
		n, ok := v.(int64)
		if !ok {
			return Decision{}, fmt.Errorf("rate limit: unexpected reply %v", res)
		}
		vals[i] = n
	}
	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}
