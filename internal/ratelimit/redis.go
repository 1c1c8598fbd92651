package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/Qualiasolutions/theracoach/internal/config"
	"github.com/Qualiasolutions/theracoach/internal/models"
)

// checkScript performs the whole fixed-window check atomically so that two
// instances hitting the same key cannot both grant the final slot. Blocked
// calls never increment.
var checkScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return {0, tonumber(current), redis.call("PTTL", KEYS[1])}
end
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return {1, count, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter is a fixed-window limiter whose counters live in Redis, for
// deployments where more than one relay instance shares the quota. Window
// rollover is handled by key expiry.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
	logger      *logrus.Logger
}

// NewRedisLimiter connects to Redis and verifies the connection.
func NewRedisLimiter(cfg *config.RateLimitConfig, logger *logrus.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLimiter{
		client:      client,
		maxRequests: cfg.MaxRequests,
		window:      cfg.Window,
		logger:      logger,
	}, nil
}

// Check records one request attempt for identifier and reports the verdict.
func (l *RedisLimiter) Check(ctx context.Context, identifier string) (models.Decision, error) {
	key := "ratelimit:" + identifier

	result, err := checkScript.Run(ctx, l.client, []string{key},
		l.maxRequests, l.window.Milliseconds()).Result()
	if err != nil {
		return models.Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return models.Decision{}, fmt.Errorf("unexpected rate limit script result: %v", result)
	}

	allowed := values[0].(int64) == 1
	count := int(values[1].(int64))
	ttlMillis := values[2].(int64)

	resetAt := time.Now().Add(l.window)
	if ttlMillis > 0 {
		resetAt = time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
	}

	remaining := l.maxRequests - count
	if !allowed || remaining < 0 {
		remaining = 0
	}

	return models.Decision{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}, nil
}

// Close releases the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
