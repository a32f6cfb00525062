package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process. Counters are lost on restart and
// not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Consume(_ context.Context, key string, now time.Time, p Policy) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prev *Record
	if r, ok := s.records[key]; ok {
		prev = &r
	}
	next, d := Decide(prev, now, p)
	s.records[key] = next
	return d, nil
}

// Sweep drops records whose window ended before now.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, r := range s.records {
		if now.After(r.ResetAt) {
			delete(s.records, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
