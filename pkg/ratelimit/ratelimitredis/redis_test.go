package ratelimitredis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/leadgate/pkg/ratelimit"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	s := NewStore(rdb)
	s.prefix = "leadgate:test:" + uuid.NewString() + ":"
	return s
}

func TestStore_MatchesDecide(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := ratelimit.Policy{Window: time.Hour, Max: 3}
	now := time.Now()

	for i := 0; i < 3; i++ {
		d, err := s.Consume(ctx, "a@b.com", now, p)
		if err != nil || !d.Allowed {
			t.Fatalf("request %d: %+v %v", i+1, d, err)
		}
	}

	d, err := s.Consume(ctx, "a@b.com", now.Add(30*time.Minute), p)
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.RetryAfterMinutes != 30 {
		t.Fatalf("got %+v, want denied with 30 minutes", d)
	}

	d, err = s.Consume(ctx, "a@b.com", now.Add(time.Hour+time.Millisecond), p)
	if err != nil || !d.Allowed {
		t.Fatalf("after window: %+v %v", d, err)
	}
}

func TestStore_ErrorDoesNotAllow(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()

	d, err := NewStore(rdb).Consume(context.Background(), "k", time.Now(), ratelimit.Policy{Window: time.Hour, Max: 1})
	if err == nil {
		t.Fatal("expected an error from an unreachable store")
	}
	if d.Allowed {
		t.Fatal("store errors must not allow")
	}
}
