package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// IPThrottle is a per-client-IP token bucket.
type IPThrottle struct {
	mu       sync.Mutex
	limiters map[string]*ipEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPThrottle returns nil when rps <= 0, and a nil throttle passes
// everything through.
func NewIPThrottle(rps float64, burst int) *IPThrottle {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &IPThrottle{
		limiters: make(map[string]*ipEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes one token for ip.
func (t *IPThrottle) Allow(ip string) bool {
	if t == nil {
		return true
	}
	now := t.now()

	t.mu.Lock()
	e, ok := t.limiters[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[ip] = e
	}
	e.lastSeen = now
	if len(t.limiters) > 10_000 {
		t.evictLocked(now)
	}
	t.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

func (t *IPThrottle) evictLocked(now time.Time) {
	for ip, e := range t.limiters {
		if now.Sub(e.lastSeen) > t.idleTTL {
			delete(t.limiters, ip)
		}
	}
}

// Middleware rejects requests over the bucket with 429. OPTIONS requests
// are never throttled.
func (t *IPThrottle) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions || t.Allow(c.IP()) {
			return c.Next()
		}
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests. Please slow down.",
		})
	}
}
