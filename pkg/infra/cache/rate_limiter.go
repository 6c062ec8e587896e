package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const rateLimitKeyPattern = "ratelimit:%s:%s"

type RateLimit struct {
	Limit  int
	Window time.Duration
}

type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter counts requests per key. Errors mean the answer is unknown.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

type RateLimiterOption func(*redisRateLimiter)

func WithClock(now func() time.Time) RateLimiterOption {
	return func(r *redisRateLimiter) { r.now = now }
}

func WithMemberID(id func() string) RateLimiterOption {
	return func(r *redisRateLimiter) { r.memberID = id }
}

// redisRateLimiter is a sliding window over a sorted set, shared by every
// replica.
type redisRateLimiter struct {
	client   Client
	scope    string
	limit    RateLimit
	now      func() time.Time
	memberID func() string
}

func NewRedisRateLimiter(client Client, scope string, limit RateLimit, opts ...RateLimiterOption) RateLimiter {
	r := &redisRateLimiter{
		client:   client,
		scope:    scope,
		limit:    limit,
		now:      time.Now,
		memberID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	rc := r.client.RedisClient()
	redisKey := fmt.Sprintf(rateLimitKeyPattern, r.scope, key)
	now := r.now()
	windowStart := now.Add(-r.limit.Window).Unix()
	result := RateLimitResult{Limit: r.limit.Limit, Reset: now.Add(r.limit.Window)}

	count, err := rc.ZCount(ctx, redisKey,
		strconv.FormatInt(windowStart, 10),
		strconv.FormatInt(now.Unix(), 10)).Result()
	if err != nil {
		return result, fmt.Errorf("failed to count requests for %s: %w", key, err)
	}
	if count >= int64(r.limit.Limit) {
		return result, nil
	}

	pipe := rc.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.Unix()),
		Member: fmt.Sprintf("%d:%s", now.Unix(), r.memberID()),
	})
	pipe.Expire(ctx, redisKey, r.limit.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return result, fmt.Errorf("failed to record request for %s: %w", key, err)
	}

	result.Allowed = true
	result.Remaining = r.limit.Limit - int(count) - 1
	return result, nil
}

// localRateLimiter is a per-process token bucket per key, used when Redis
// is not configured.
type localRateLimiter struct {
	mu       sync.Mutex
	limit    RateLimit
	limiters *TTLMap[*rate.Limiter]
	now      func() time.Time
}

func NewLocalRateLimiter(limit RateLimit) RateLimiter {
	return &localRateLimiter{
		limit:    limit,
		limiters: NewTTLMap[*rate.Limiter](2 * limit.Window),
		now:      time.Now,
	}
}

func (l *localRateLimiter) Allow(_ context.Context, key string) (RateLimitResult, error) {
	now := l.now()

	l.mu.Lock()
	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.limit.Window/time.Duration(l.limit.Limit)), l.limit.Limit)
	}
	l.limiters.Set(key, lim)
	l.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   allowed,
		Limit:     l.limit.Limit,
		Remaining: remaining,
		Reset:     now.Add(l.limit.Window),
	}, nil
}
