package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/placereviews/auth-api/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimitDecision describes the state of a key after Allow
type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter handles rate limiting using Redis sorted sets (sliding window log)
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// slidingWindow trims the window, then either denies with the time until the
// oldest entry leaves it or records the request. Running as one script keeps
// concurrent requests for a key from overshooting the limit.
//
// KEYS[1] window key; ARGV now ms, window ms, limit, member.
// Returns {allowed, remaining, retry after ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
	local retry = window
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {0, 0, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window + 60000)
return {1, limit - count - 1, 0}
`)

// Allow records a request for key and reports whether it fits in the window
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitDecision, error) {
	res, err := slidingWindow.Run(ctx, r.redis.Client, []string{"ratelimit:" + key},
		r.now().UnixMilli(),
		window.Milliseconds(),
		limit,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to apply rate limit: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected rate limit reply %v", res)
	}

	return &RateLimitDecision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
