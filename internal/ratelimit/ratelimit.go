package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultMax    = 10
	DefaultWindow = 60 * time.Second
)

// Limiter is a fixed-window counter keyed by client identifier.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// ClientID returns the first X-Forwarded-For entry, then X-Real-IP, then "anonymous".
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first == "" {
			return "anonymous"
		}
		return first
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "anonymous"
}

type window struct {
	count   int
	resetAt time.Time
}

type MemoryLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	entries   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(limit int, w time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultMax
	}
	if w <= 0 {
		w = DefaultWindow
	}
	return &MemoryLimiter{
		max:     limit,
		window:  w,
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok || e.resetAt.Before(now) {
		l.entries[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if e.count >= l.max {
		return false
	}
	e.count++
	return true
}

// sweep drops expired windows at most once per window length.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for k, e := range l.entries {
		if e.resetAt.Before(now) {
			delete(l.entries, k)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RedisLimiter shares windows across instances. Redis failures fall back to
// the local memory limiter.
type RedisLimiter struct {
	client   *redis.Client
	max      int64
	window   time.Duration
	prefix   string
	fallback *MemoryLimiter
	log      *zap.Logger
}

func NewRedisLimiter(client *redis.Client, limit int, w time.Duration, log *zap.Logger) *RedisLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	fallback := NewMemoryLimiter(limit, w)
	return &RedisLimiter{
		client:   client,
		max:      int64(fallback.max),
		window:   fallback.window,
		prefix:   "ratelimit:leads:",
		fallback: fallback,
		log:      log,
	}
}

// Allow counts the hit and reads the key's TTL in one transaction. A key
// without a TTL gets one on every hit until PEXPIRE succeeds, so a lost
// expiry never pins the counter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := l.prefix + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		l.log.Warn("rate limit store unavailable", zap.Error(err))
		return l.fallback.Allow(ctx, key)
	}
	if ttl.Val() < 0 {
		if err := l.client.PExpire(ctx, redisKey, l.window).Err(); err != nil {
			l.log.Warn("rate limit expiry not set", zap.String("key", redisKey), zap.Error(err))
		}
	}
	return incr.Val() <= l.max
}
