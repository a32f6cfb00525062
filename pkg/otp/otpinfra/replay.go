package otpinfra

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/redis/go-redis/v9"
)

// MemoryReplayGuard records redeemed challenge digests in process until the
// challenge expires. Expired entries linger until Sweep.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]time.Time), now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (g *MemoryReplayGuard) WithClock(now func() time.Time) *MemoryReplayGuard {
	g.now = now
	return g
}

func (g *MemoryReplayGuard) MarkRedeemed(_ context.Context, digest string, until time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if exp, ok := g.seen[digest]; ok && !g.now().After(exp) {
		return false, nil
	}
	g.seen[digest] = until
	return true, nil
}

// Sweep drops entries whose challenge expired before now and reports how
// many were removed.
func (g *MemoryReplayGuard) Sweep(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for k, exp := range g.seen {
		if now.After(exp) {
			delete(g.seen, k)
			n++
		}
	}
	return n
}

// RedisReplayGuard shares redemptions across instances with SET NX.
type RedisReplayGuard struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisReplayGuard(rdb *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{rdb: rdb, prefix: "leadgate:redeemed:", now: time.Now}
}

func (g *RedisReplayGuard) MarkRedeemed(ctx context.Context, digest string, until time.Time) (bool, error) {
	ttl := until.Sub(g.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := g.rdb.SetNX(ctx, g.prefix+digest, 1, ttl).Result()
	if err != nil {
		return false, errx.Wrap(err, "replay guard unavailable", errx.TypeInternal)
	}
	return ok, nil
}
