package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	mu     sync.RWMutex
	client *redis.Client
)

// Config holds Redis connection configuration
type Config struct {
	URL      string // redis://host:port or rediss://host:port for TLS (Upstash)
	Password string // overrides the password embedded in URL
}

// Client returns the shared Redis client, or nil when Redis is not configured.
// Every caller must handle nil and degrade (in-memory fallback or fail open).
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// SetClient swaps the shared client; used by tests and by Close.
func SetClient(c *redis.Client) {
	mu.Lock()
	client = c
	mu.Unlock()
}

// Initialize connects to Redis and installs the shared client.
func Initialize(cfg Config) error {
	if cfg.URL == "" {
		return errors.New("redis: UPSTASH_REDIS_URL not configured")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if opts.TLSConfig != nil {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: opts.TLSConfig.ServerName}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis: connection failed: %w", err)
	}

	SetClient(c)
	return nil
}

// IsAvailable checks if Redis client is initialized and connected.
func IsAvailable() bool {
	c := Client()
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	return c.Ping(ctx).Err() == nil
}

// HealthCheck returns nil if Redis answers PING.
func HealthCheck(ctx context.Context) error {
	c := Client()
	if c == nil {
		return errors.New("redis: client not initialized")
	}
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection gracefully.
func Close() error {
	c := Client()
	if c == nil {
		return nil
	}
	SetClient(nil)
	return c.Close()
}
