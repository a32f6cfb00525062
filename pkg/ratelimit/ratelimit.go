package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one CheckAndConsume call.
type Decision struct {
	Allowed           bool
	RetryAfterMinutes int
}

// Record is the per-key window state kept by every store.
type Record struct {
	Count   int
	ResetAt time.Time
}

// Policy is a fixed window: at most Max consumptions per Window.
type Policy struct {
	Window time.Duration
	Max    int
}

// Store applies a policy to the record under key atomically.
type Store interface {
	Consume(ctx context.Context, key string, now time.Time, p Policy) (Decision, error)
}

// Decide computes the next record and the decision for prev at now. A nil
// prev starts a fresh window. A now equal to ResetAt is still inside the
// window.
func Decide(prev *Record, now time.Time, p Policy) (Record, Decision) {
	if prev == nil || now.After(prev.ResetAt) {
		return Record{Count: 1, ResetAt: now.Add(p.Window)}, Decision{Allowed: true}
	}
	if prev.Count >= p.Max {
		return *prev, Decision{RetryAfterMinutes: RetryAfterMinutes(prev.ResetAt.Sub(now))}
	}
	return Record{Count: prev.Count + 1, ResetAt: prev.ResetAt}, Decision{Allowed: true}
}

// RetryAfterMinutes rounds d up to whole minutes.
func RetryAfterMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	return int((ms + 59_999) / 60_000)
}

// Limiter binds a store to a policy and a clock.
type Limiter struct {
	store  Store
	policy Policy
	now    func() time.Time
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(store Store, policy Policy, opts ...Option) *Limiter {
	l := &Limiter{store: store, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndConsume counts one request against key. Store errors are returned
// as-is; callers must not treat them as Allowed.
func (l *Limiter) CheckAndConsume(ctx context.Context, key string) (Decision, error) {
	return l.store.Consume(ctx, key, l.now(), l.policy)
}
