package ratelimit

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

var policy = Policy{Window: time.Hour, Max: 10}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiter_TenAllowedEleventhDenied(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(NewMemoryStore(), policy, WithClock(clk.now))
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		d, err := l.CheckAndConsume(ctx, "a@b.com")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d: decision=%+v err=%v", i, d, err)
		}
	}

	d, _ := l.CheckAndConsume(ctx, "a@b.com")
	if d.Allowed {
		t.Fatal("11th request should be denied")
	}
	if d.RetryAfterMinutes != 60 {
		t.Fatalf("RetryAfterMinutes = %d, want 60", d.RetryAfterMinutes)
	}

	// Other keys are independent.
	if d, _ := l.CheckAndConsume(ctx, "c@d.com"); !d.Allowed {
		t.Fatal("unrelated key was denied")
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(NewMemoryStore(), policy, WithClock(clk.now))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		l.CheckAndConsume(ctx, "k")
	}

	// resetAt itself is still in the window
	clk.advance(time.Hour)
	if d, _ := l.CheckAndConsume(ctx, "k"); d.Allowed {
		t.Fatal("request at resetAt should still be denied")
	}

	clk.advance(time.Millisecond)
	if d, _ := l.CheckAndConsume(ctx, "k"); !d.Allowed {
		t.Fatal("request after the window should be allowed")
	}
}

func TestDecide_RetryAfterRoundsUp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{time.Millisecond, 1},
		{60 * time.Second, 1},
		{60*time.Second + time.Millisecond, 2},
		{59*time.Minute + 30*time.Second, 60},
	}
	for _, tc := range cases {
		prev := &Record{Count: 10, ResetAt: now.Add(tc.remaining)}
		_, d := Decide(prev, now, policy)
		if d.Allowed || d.RetryAfterMinutes != tc.want {
			t.Errorf("remaining %v: got %+v, want %d minutes", tc.remaining, d, tc.want)
		}
	}
}

func TestMemoryStore_ConcurrentConsumers(t *testing.T) {
	s := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := s.Consume(context.Background(), "k", now, policy)
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != policy.Max {
		t.Fatalf("allowed = %d, want %d", allowed, policy.Max)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	s.Consume(context.Background(), "old", now, policy)
	s.Consume(context.Background(), "new", now.Add(30*time.Minute), policy)

	if n := s.Sweep(now.Add(time.Hour + time.Second)); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestIPThrottle_Middleware(t *testing.T) {
	th := NewIPThrottle(0.0001, 2)
	app := fiber.New()
	app.Use(th.Middleware())
	app.Post("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	want := []int{200, 200, 429}
	for i, status := range want {
		resp, err := app.Test(httptest.NewRequest("POST", "/x", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != status {
			t.Fatalf("request %d: status = %d, want %d", i+1, resp.StatusCode, status)
		}
	}
}

func TestIPThrottle_DisabledIsNil(t *testing.T) {
	th := NewIPThrottle(0, 5)
	if th != nil {
		t.Fatal("rps 0 should disable the throttle")
	}
	if !th.Allow("1.2.3.4") {
		t.Fatal("nil throttle must allow")
	}
}
