package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cashflow_tracker/internal/log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter counts attempts per key inside a fixed window.
type Limiter interface {
	// Allow records one attempt for key and reports whether it is within the
	// limit, plus the time left until the window resets.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type memoryEntry struct {
	attempts  int
	resetTime time.Time
}

// MemoryLimiter is a process-local fixed-window limiter
type MemoryLimiter struct {
	mu          sync.Mutex
	entries     map[string]*memoryEntry
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewMemoryLimiter creates a limiter allowing maxAttempts per window
func NewMemoryLimiter(maxAttempts int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries:     make(map[string]*memoryEntry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.resetTime) {
		l.entries[key] = &memoryEntry{attempts: 1, resetTime: now.Add(l.window)}
		l.sweep(now)
		return true, l.window, nil
	}
	if entry.attempts < l.maxAttempts {
		entry.attempts++
		return true, entry.resetTime.Sub(now), nil
	}
	return false, entry.resetTime.Sub(now), nil
}

// sweep drops expired entries so idle keys do not accumulate.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, entry := range l.entries {
		if !now.Before(entry.resetTime) {
			delete(l.entries, key)
		}
	}
}

// RedisLimiter shares its counters across instances through Redis
type RedisLimiter struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter creates a limiter allowing maxAttempts per window
func NewRedisLimiter(client *redis.Client, prefix string, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := l.prefix + key

	attempts, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}
	if attempts == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expiry: %w", err)
		}
	}

	remaining, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit ttl: %w", err)
	}
	if remaining < 0 {
		remaining = l.window
	}
	return attempts <= int64(l.maxAttempts), remaining, nil
}

// RateLimit rejects requests over the limiter's budget with 429. Requests
// are keyed by client IP. A failing limiter lets the request through.
func RateLimit(limiter Limiter, logger *log.Logger) gin.HandlerFunc {
	logger = logger.WithComponent(log.ComponentRateLimit)
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = c.Request.RemoteAddr
		}

		ok, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Rate limiter unavailable, allowing request",
				log.FieldRequestID, c.GetString(log.RequestIDKey), log.FieldError, err)
			c.Next()
			return
		}
		if !ok {
			seconds := int(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
