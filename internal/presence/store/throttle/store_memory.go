package throttle

import (
	"context"
	"sync"
	"time"
)

// InMemoryThrottleStore tracks last-write stamps in a process-local map.
// Per-process only: when the gateway runs as multiple replicas, each replica
// throttles independently and the effective write rate scales with replica
// count. Use RedisThrottleStore to hold the window across replicas.
type InMemoryThrottleStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewInMemory() *InMemoryThrottleStore {
	return &InMemoryThrottleStore{
		entries: make(map[string]time.Time),
	}
}

// TryAcquire records now as the key's last write if the window has elapsed,
// in one step under the lock so concurrent signals cannot both win.
func (s *InMemoryThrottleStore) TryAcquire(_ context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.entries[key]; ok && now.Sub(last) < window {
		return false, nil
	}
	s.entries[key] = now
	return true, nil
}

// Touch unconditionally refreshes the key's last-write stamp.
func (s *InMemoryThrottleStore) Touch(_ context.Context, key string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = now
	return nil
}

// Evict drops entries whose last write is older than maxAge, bounding memory
// for a long-running process with many distinct subjects.
func (s *InMemoryThrottleStore) Evict(_ context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	evicted := 0
	for key, last := range s.entries {
		if last.Before(cutoff) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted, nil
}

func (s *InMemoryThrottleStore) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
