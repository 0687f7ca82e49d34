package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/redis"
	"go-rise-platform/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig is one fixed-window limit.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP.
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests when Redis errors instead of using memory.
	FailClosed bool
}

type windowCounter struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// memoryLimiter is the per-process fallback when Redis is unavailable.
type memoryLimiter struct {
	entries sync.Map
	once    sync.Once
}

var fallback = &memoryLimiter{}

// KEYS[1] counter, ARGV[1] window seconds. Returns {count, ttl}.
const rateLimitScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func (m *memoryLimiter) sweep() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			m.entries.Range(func(key, value interface{}) bool {
				entry := value.(*windowCounter)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					m.entries.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}()
}

func (m *memoryLimiter) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.once.Do(m.sweep)
	v, _ := m.entries.LoadOrStore(key, &windowCounter{resetAt: now.Add(window)})
	entry := v.(*windowCounter)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

func clientIP(c *gin.Context) string { return c.ClientIP() }

func newConfig(prefix string, limit int, window time.Duration, failClosed bool) RateLimitConfig {
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: prefix, KeyFunc: clientIP, FailClosed: failClosed}
}

// GlobalRateLimit applies to every route and fails open.
func GlobalRateLimit(limit int, window time.Duration) RateLimitConfig {
	return newConfig("rl:ip:", limit, window, false)
}

// LoginRateLimit guards /auth/login and /auth/register and fails closed.
func LoginRateLimit(limit int, window time.Duration) RateLimitConfig {
	return newConfig("rl:login:", limit, window, true)
}

// UploadRateLimit guards /uploads/*.
func UploadRateLimit(limit int, window time.Duration) RateLimitConfig {
	return newConfig("rl:upload:", limit, window, false)
}

// WebhookRateLimit guards the gateway notification endpoint.
func WebhookRateLimit(limit int, window time.Duration) RateLimitConfig {
	return newConfig("rl:webhook:", limit, window, false)
}

// RateLimitMiddleware counts in Redis when it is available and in memory otherwise.
func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + cfg.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time

		if client := redis.Client(); client != nil {
			var err error
			count, resetAt, err = countRedis(c.Request.Context(), client, key, cfg.Window)
			if err != nil {
				if cfg.FailClosed {
					logger.Log.Error("Rate limit check failed", "key_prefix", cfg.KeyPrefix, "error", err)
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = fallback.hit(key, cfg.Window, now)
			}
		} else {
			count, resetAt = fallback.hit(key, cfg.Window, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			security.DefaultLogger().LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString(RequestIDKey),
				c.FullPath(),
			)
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-count))
		c.Next()
	}
}

func countRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}
