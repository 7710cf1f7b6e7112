// Package ratelimit limits request rates per key (user or IP).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows at most Limit requests per key within Window. With a Redis
// client the window slides and is shared across instances; without one it
// is a fixed window local to the process.
type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration

	mu        sync.Mutex
	local     map[string]*localWindow
	nextSweep time.Time
	now       func() time.Time
}

type localWindow struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter. redisClient may be nil.
func New(redisClient *redis.Client, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
		local:  make(map[string]*localWindow),
		now:    time.Now,
	}
}

// Enabled reports whether the limiter enforces anything.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

// slidingWindow trims the sorted set to the window, then admits the request
// if there is room. Returns remaining slots, or the negative wait in ms.
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
		return limit - count - 1
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if #oldest > 0 then
		return -(tonumber(oldest[2]) + window_ms - now)
	end
	return -window_ms
`)

// Allow records a request for key. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if !l.Enabled() {
		return Decision{Allowed: true}
	}
	if l.redis == nil {
		return l.allowLocal(key)
	}

	now := l.now()
	result, err := slidingWindow.Run(ctx, l.redis, []string{"ratelimit:" + key},
		now.UnixMilli(),
		l.window.Milliseconds(),
		l.limit,
		fmt.Sprintf("%d-%d", now.UnixNano(), nextSeq()),
	).Int64()
	if err != nil {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}
	}

	if result >= 0 {
		return Decision{Allowed: true, Limit: l.limit, Remaining: int(result)}
	}
	wait := time.Duration(-result) * time.Millisecond
	if wait <= 0 {
		wait = time.Millisecond
	}
	return Decision{Allowed: false, Limit: l.limit, RetryAfter: wait}
}

func (l *Limiter) allowLocal(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.local[key]
	if !ok || !now.Before(w.expiresAt) {
		if !now.Before(l.nextSweep) {
			l.sweep(now)
		}
		l.local[key] = &localWindow{count: 1, expiresAt: now.Add(l.window)}
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - 1}
	}

	if w.count >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, RetryAfter: w.expiresAt.Sub(now)}
	}
	w.count++
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - w.count}
}

// sweep drops expired windows, at most once per window. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	for k, w := range l.local {
		if !now.Before(w.expiresAt) {
			delete(l.local, k)
		}
	}
	l.nextSweep = now.Add(l.window)
}

var seq atomic.Uint64

func nextSeq() uint64 {
	return seq.Add(1)
}
