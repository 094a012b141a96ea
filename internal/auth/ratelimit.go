package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Requests int           // Maximum requests
	Window   time.Duration // Time window
	Burst    int           // Additional burst capacity
}

var (
	RateLimitAuth = RateLimitConfig{Requests: 5, Window: time.Minute, Burst: 0} // Strict for auth
	RateLimitChat = RateLimitConfig{Requests: 20, Window: time.Minute, Burst: 5}
)

// RateLimiter implements sliding window rate limiting with Redis. With no
// Redis client configured every check is allowed.
type RateLimiter struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		keyPrefix: "lumorah:ratelimit:",
	}
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Limit      int           `json:"limit"`
}

// Lua script for atomic sliding window rate limiting: removes old entries,
// counts the window, and either admits or reports the retry delay.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local burst = tonumber(ARGV[5])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)
	local total_allowed = max_requests + burst

	if current_count < total_allowed then
		redis.call('ZADD', key, now, now .. '-' .. math.random(100000))
		redis.call('PEXPIRE', key, window_ms)
		return {1, total_allowed - current_count - 1, 0}
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry_after = 0
		if #oldest >= 2 then
			retry_after = tonumber(oldest[2]) + window_ms - now
		end
		return {0, 0, retry_after}
	end
`)

// Check performs a rate limit check using a sliding window.
func (r *RateLimiter) Check(ctx context.Context, identifier string, config RateLimitConfig) (*RateLimitResult, error) {
	if r.redis == nil {
		return &RateLimitResult{Allowed: true, Remaining: config.Requests, Limit: config.Requests + config.Burst}, nil
	}

	key := r.keyPrefix + identifier
	now := time.Now()
	windowStart := now.Add(-config.Window)

	result, err := slidingWindowScript.Run(ctx, r.redis, []string{key},
		now.UnixMilli(),
		windowStart.UnixMilli(),
		config.Requests,
		config.Window.Milliseconds(),
		config.Burst,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values := result.([]interface{})

	return &RateLimitResult{
		Allowed:    values[0].(int64) == 1,
		Remaining:  int(values[1].(int64)),
		RetryAfter: time.Duration(values[2].(int64)) * time.Millisecond,
		Limit:      config.Requests + config.Burst,
	}, nil
}

// CheckIP rate limits by IP address
func (r *RateLimiter) CheckIP(ctx context.Context, ip string, config RateLimitConfig) (*RateLimitResult, error) {
	return r.Check(ctx, "ip:"+ip, config)
}

// CheckUser rate limits by user ID
func (r *RateLimiter) CheckUser(ctx context.Context, userID string, config RateLimitConfig) (*RateLimitResult, error) {
	return r.Check(ctx, "user:"+userID, config)
}
