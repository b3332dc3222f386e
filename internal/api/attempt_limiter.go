package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// attemptLimiter blocks a client after limit failures inside window. Entries
// of clients that stop failing expire from the cache after one window.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	failures *cache.Cache
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		failures: cache.New(window, 2*window),
	}
}

func (limiter *attemptLimiter) blocked(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return len(limiter.withinWindowLocked(key, now)) >= limiter.limit
}

func (limiter *attemptLimiter) recordFailure(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	attempts := append(limiter.withinWindowLocked(key, now), now)
	limiter.failures.SetDefault(key, attempts)
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.failures.Delete(key)
}

func (limiter *attemptLimiter) withinWindowLocked(key string, now time.Time) []time.Time {
	cached, ok := limiter.failures.Get(key)
	if !ok {
		return nil
	}
	cutoff := now.Add(-limiter.window)
	var attempts []time.Time
	for _, at := range cached.([]time.Time) {
		if at.After(cutoff) {
			attempts = append(attempts, at)
		}
	}
	return attempts
}

func requestLimiterKey(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.IP()); ip != "" {
		return ip
	}
	return "unknown"
}
