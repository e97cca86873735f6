package throttle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryThrottleStoreSuite struct {
	suite.Suite
	store *InMemoryThrottleStore
}

func TestMemoryThrottleStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryThrottleStoreSuite))
}

func (s *MemoryThrottleStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *MemoryThrottleStoreSuite) TestTryAcquire() {
	ctx := context.Background()
	now := time.Now()
	window := time.Minute

	s.Run("first acquire for a key wins", func() {
		ok, err := s.store.TryAcquire(ctx, "user_a", now, window)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("second acquire inside the window loses", func() {
		ok, err := s.store.TryAcquire(ctx, "user_a", now.Add(30*time.Second), window)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("acquire after the window wins again", func() {
		ok, err := s.store.TryAcquire(ctx, "user_a", now.Add(61*time.Second), window)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("distinct keys do not interfere", func() {
		ok, err := s.store.TryAcquire(ctx, "anon_b", now, window)
		s.Require().NoError(err)
		s.True(ok)
	})
}

// TestTryAcquireConcurrent verifies that N concurrent signals for the same key
// inside one window yield exactly one winner.
func (s *MemoryThrottleStoreSuite) TestTryAcquireConcurrent() {
	ctx := context.Background()
	now := time.Now()
	const goroutines = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.store.TryAcquire(ctx, "user_hot", now, time.Minute)
			s.NoError(err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, winners)
}

func (s *MemoryThrottleStoreSuite) TestTouchResetsWindow() {
	ctx := context.Background()
	now := time.Now()

	ok, err := s.store.TryAcquire(ctx, "user_a", now, time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	// Force path stamps a later write; the window restarts from there.
	s.Require().NoError(s.store.Touch(ctx, "user_a", now.Add(50*time.Second)))

	ok, err = s.store.TryAcquire(ctx, "user_a", now.Add(70*time.Second), time.Minute)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MemoryThrottleStoreSuite) TestEvict() {
	ctx := context.Background()
	old := time.Now().Add(-15 * time.Minute)
	fresh := time.Now()

	s.Require().NoError(s.store.Touch(ctx, "stale_1", old))
	s.Require().NoError(s.store.Touch(ctx, "stale_2", old))
	s.Require().NoError(s.store.Touch(ctx, "fresh", fresh))

	evicted, err := s.store.Evict(ctx, 10*time.Minute)
	s.Require().NoError(err)
	s.Equal(2, evicted)

	size, err := s.store.Size(ctx)
	s.Require().NoError(err)
	s.Equal(1, size)
}
