// Package throttle bounds how often a subject's lastActiveAt is persisted.
//
// The pull path (REST activity signals) goes through RecordActivity: at most
// one persisted write per subject per throttle window, performed
// asynchronously so request handlers never block on the persistence result.
// The push path (connect/disconnect) goes through ForceOnline/ForceOffline:
// synchronous writes that bypass the window, because correctness matters more
// than write amplification for the comparatively rare transport events.
package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"meeshy/internal/presence/metrics"
	"meeshy/internal/presence/models"
	"meeshy/internal/presence/ports"
	id "meeshy/pkg/domain"
)

type Service struct {
	cache    ports.ThrottleStore
	subjects ports.SubjectStore
	logger   *slog.Logger
	metrics  *metrics.Metrics

	window          time.Duration
	cleanupInterval time.Duration
	maxAge          time.Duration

	totalRequests     atomic.Int64
	throttledRequests atomic.Int64
	writesSucceeded   atomic.Int64
	writesFailed      atomic.Int64

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	writing sync.WaitGroup
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the activity throttle. window is the minimum gap between
// persisted writes per subject; cleanupInterval/maxAge control cache eviction.
func New(cache ports.ThrottleStore, subjects ports.SubjectStore, window, cleanupInterval, maxAge time.Duration, opts ...Option) (*Service, error) {
	if cache == nil {
		return nil, fmt.Errorf("throttle store is required")
	}
	if subjects == nil {
		return nil, fmt.Errorf("subject store is required")
	}
	if window <= 0 || cleanupInterval <= 0 || maxAge <= 0 {
		return nil, fmt.Errorf("throttle intervals must be positive")
	}

	svc := &Service{
		cache:           cache,
		subjects:        subjects,
		logger:          slog.Default(),
		window:          window,
		cleanupInterval: cleanupInterval,
		maxAge:          maxAge,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RecordActivity handles one pull-path activity signal. Returns written=true
// when a persistence write was scheduled; the write itself is asynchronous and
// fire-and-forget. Write failures are logged, never retried inline: the next
// signal after the window naturally retries.
func (s *Service) RecordActivity(ctx context.Context, ref id.SubjectRef) (written bool, err error) {
	s.totalRequests.Add(1)
	if s.metrics != nil {
		s.metrics.ActivityRequests.Inc()
	}

	now := time.Now()
	acquired, err := s.cache.TryAcquire(ctx, ref.Key(), now, s.window)
	if err != nil {
		// A broken throttle store must not fail the request path; skip the
		// write and let a later signal retry once the store recovers.
		s.logger.Warn("throttle store unavailable, skipping activity write",
			"subject", ref.Key(), "error", err)
		return false, nil
	}
	if !acquired {
		s.throttledRequests.Add(1)
		if s.metrics != nil {
			s.metrics.ActivityThrottled.Inc()
		}
		return false, nil
	}

	s.writing.Add(1)
	go func() {
		defer s.writing.Done()
		// Detached from the request context: the caller has already returned.
		writeCtx, cancelWrite := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelWrite()
		if err := s.subjects.SetLastActive(writeCtx, ref, now); err != nil {
			s.writesFailed.Add(1)
			if s.metrics != nil {
				s.metrics.ActivityWrites.WithLabelValues("error").Inc()
			}
			s.logger.Warn("async lastActive write failed",
				"subject", ref.Key(), "error", err)
			return
		}
		s.writesSucceeded.Add(1)
		if s.metrics != nil {
			s.metrics.ActivityWrites.WithLabelValues("ok").Inc()
		}
	}()
	return true, nil
}

// ForceOnline persists isOnline=true and lastActiveAt=now synchronously,
// bypassing the throttle window, and stamps the cache so an activity signal
// right after connect is throttled. Errors propagate to the caller: the
// transport decides whether to retry or degrade.
func (s *Service) ForceOnline(ctx context.Context, ref id.SubjectRef) error {
	now := time.Now()
	if err := s.subjects.SetOnline(ctx, ref, now); err != nil {
		return fmt.Errorf("force online %s: %w", ref.Key(), err)
	}
	if err := s.cache.Touch(ctx, ref.Key(), now); err != nil {
		// Cache stamp failure only costs one extra write later.
		s.logger.Warn("throttle stamp failed after force online",
			"subject", ref.Key(), "error", err)
	}
	return nil
}

// ForceOffline persists isOnline=false and lastSeen=now synchronously. The
// cache is left alone: a subject that keeps polling after its socket closed
// should get its next activity written promptly.
func (s *Service) ForceOffline(ctx context.Context, ref id.SubjectRef) error {
	if err := s.subjects.SetOffline(ctx, ref, time.Now()); err != nil {
		return fmt.Errorf("force offline %s: %w", ref.Key(), err)
	}
	return nil
}

// Start launches the periodic cache eviction sweep. Idempotent.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evict(ctx)
			}
		}
	}(s.done)
}

// Stop cancels the eviction sweep and waits for it to exit. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Stats returns cumulative counters and the current cache size. Operational
// visibility only; the counters are not part of the correctness contract.
func (s *Service) Stats(ctx context.Context) models.ThrottleStats {
	size, err := s.cache.Size(ctx)
	if err != nil {
		s.logger.Warn("throttle cache size failed", "error", err)
	}
	return models.ThrottleStats{
		TotalRequests:     s.totalRequests.Load(),
		ThrottledRequests: s.throttledRequests.Load(),
		WritesSucceeded:   s.writesSucceeded.Load(),
		WritesFailed:      s.writesFailed.Load(),
		CacheSize:         size,
	}
}

func (s *Service) evict(ctx context.Context) {
	evicted, err := s.cache.Evict(ctx, s.maxAge)
	if err != nil {
		s.logger.Warn("throttle cache eviction failed", "error", err)
		return
	}
	if evicted > 0 {
		s.logger.Debug("throttle cache evicted entries", "count", evicted)
	}
	if s.metrics != nil {
		if size, err := s.cache.Size(ctx); err == nil {
			s.metrics.ThrottleCacheSize.Set(float64(size))
		}
	}
}

// flushWrites waits for in-flight async writes. Test helper.
func (s *Service) flushWrites() {
	s.writing.Wait()
}
