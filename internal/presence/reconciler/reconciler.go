// Package reconciler corrects presence state that the push path missed. A
// periodic sweep flips zombie subjects (online in storage, no recent activity)
// offline; a once-daily cleanup window removes expired ephemeral data.
//
// Every background task swallows and logs its errors: a flaky persistence
// layer delays freshness by one tick, it never kills the timer loop.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"meeshy/internal/presence/broadcast"
	"meeshy/internal/presence/metrics"
	"meeshy/internal/presence/models"
	"meeshy/internal/presence/ports"
	id "meeshy/pkg/domain"
)

// Clock abstracts time.Now for tests that need to steer the daily window.
type Clock func() time.Time

// Config holds the reconciler's timing knobs.
type Config struct {
	// OfflineThreshold is how stale lastActiveAt may be before an online
	// subject is considered a zombie.
	OfflineThreshold time.Duration
	// MaintenanceInterval is the sweep period.
	MaintenanceInterval time.Duration
	// CleanupCheckInterval is how often the daily window is probed. The
	// lastRunDate guard keeps execution at most once per calendar day.
	CleanupCheckInterval time.Duration
	// AnonymousSessionTTL is the inactivity age past which anonymous subjects
	// are hard-deleted.
	AnonymousSessionTTL time.Duration
	// OrphanedAttachmentThreshold is the minimum age of an unlinked
	// attachment before deletion.
	OrphanedAttachmentThreshold time.Duration
	// CleanupWindowStartHour and CleanupWindowEndHour bound the local-time
	// window, [start, end), inside which the daily cleanup may run.
	CleanupWindowStartHour int
	CleanupWindowEndHour   int
}

type Service struct {
	subjects    ports.SubjectStore
	shareLinks  ports.ShareLinkStore
	attachments ports.AttachmentService
	hub         *broadcast.Hub
	logger      *slog.Logger
	metrics     *metrics.Metrics
	clock       Clock
	cfg         Config

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	lastRunDate string // YYYY-MM-DD of the last daily cleanup execution
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

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs the reconciler. shareLinks and attachments may be nil when the
// deployment has no ephemeral data to clean; the daily task then skips them.
func New(subjects ports.SubjectStore, shareLinks ports.ShareLinkStore, attachments ports.AttachmentService, hub *broadcast.Hub, cfg Config, opts ...Option) (*Service, error) {
	if subjects == nil {
		return nil, fmt.Errorf("subject store is required")
	}
	if hub == nil {
		return nil, fmt.Errorf("broadcast hub is required")
	}
	if cfg.OfflineThreshold <= 0 || cfg.MaintenanceInterval <= 0 || cfg.CleanupCheckInterval <= 0 {
		return nil, fmt.Errorf("reconciler intervals must be positive")
	}

	svc := &Service{
		subjects:    subjects,
		shareLinks:  shareLinks,
		attachments: attachments,
		hub:         hub,
		logger:      slog.Default(),
		clock:       time.Now,
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Start launches the sweep and the daily-cleanup check. Idempotent: a second
// Start without an intervening Stop is a no-op, so duplicate timers can never
// double-apply the sweep.
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
		sweep := time.NewTicker(s.cfg.MaintenanceInterval)
		defer sweep.Stop()
		cleanup := time.NewTicker(s.cfg.CleanupCheckInterval)
		defer cleanup.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sweep.C:
				s.sweep(ctx)
			case <-cleanup.C:
				s.maybeRunDailyCleanup(ctx)
			}
		}
	}(s.done)
	s.logger.Info("presence reconciler started",
		"offline_threshold", s.cfg.OfflineThreshold,
		"maintenance_interval", s.cfg.MaintenanceInterval)
}

// Stop cancels both timers and waits for the loop to exit. Idempotent.
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
	s.logger.Info("presence reconciler stopped")
}

// Active reports whether the timers are running.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// sweep flips every online, active subject whose lastActiveAt is older than
// the offline threshold. One missed disconnect costs at most one threshold
// plus one tick of staleness.
func (s *Service) sweep(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.ReconcilerSweeps.Inc()
	}
	now := s.clock()
	threshold := now.Add(-s.cfg.OfflineThreshold)

	for _, kind := range id.Kinds {
		stale, err := s.subjects.ReadStale(ctx, kind, threshold)
		if err != nil {
			s.logger.Error("stale subject query failed", "kind", kind, "error", err)
			continue
		}
		if len(stale) == 0 {
			s.logger.Debug("sweep found no zombie subjects", "kind", kind)
			continue
		}

		ids := make([]string, len(stale))
		for i, subject := range stale {
			ids[i] = subject.ID
		}
		if err := s.subjects.BatchSetOffline(ctx, kind, ids, now); err != nil {
			s.logger.Error("batch offline update failed", "kind", kind, "count", len(ids), "error", err)
			continue
		}

		for _, subject := range stale {
			s.hub.Notify(subject.Ref(), false)
		}
		if s.metrics != nil {
			s.metrics.SubjectsFlippedOffline.WithLabelValues(string(kind)).Add(float64(len(ids)))
		}
		s.logger.Info("flipped stale subjects offline", "kind", kind, "count", len(ids))
	}

	s.updateOnlineGauges(ctx)
}

// maybeRunDailyCleanup executes the daily cleanup if the local time is inside
// the configured window and it has not already run today.
func (s *Service) maybeRunDailyCleanup(ctx context.Context) {
	now := s.clock()
	hour := now.Hour()
	if hour < s.cfg.CleanupWindowStartHour || hour >= s.cfg.CleanupWindowEndHour {
		return
	}

	today := now.Format("2006-01-02")
	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	if !alreadyRan {
		s.lastRunDate = today
	}
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	s.runDailyCleanup(ctx, now)
}

// runDailyCleanup deletes expired ephemeral data: anonymous subjects past
// their inactivity TTL (hard delete), expired share links, and orphaned
// attachments via the external attachment service.
func (s *Service) runDailyCleanup(ctx context.Context, now time.Time) {
	if s.metrics != nil {
		s.metrics.DailyCleanupRuns.Inc()
	}
	s.logger.Info("daily cleanup starting")

	deleted, err := s.subjects.DeleteInactiveAnonymous(ctx, now.Add(-s.cfg.AnonymousSessionTTL))
	if err != nil {
		s.logger.Error("anonymous subject cleanup failed", "error", err)
	} else if deleted > 0 {
		s.logger.Info("deleted inactive anonymous subjects", "count", deleted)
	}

	if s.shareLinks != nil {
		deleted, err := s.shareLinks.DeleteExpired(ctx, now)
		if err != nil {
			s.logger.Error("share link cleanup failed", "error", err)
		} else if deleted > 0 {
			s.logger.Info("deleted expired share links", "count", deleted)
		}
	}

	if s.attachments != nil {
		s.cleanupOrphanedAttachments(ctx, now)
	}
}

func (s *Service) cleanupOrphanedAttachments(ctx context.Context, now time.Time) {
	orphans, err := s.attachments.ListOrphaned(ctx, now.Add(-s.cfg.OrphanedAttachmentThreshold))
	if err != nil {
		s.logger.Error("orphaned attachment listing failed", "error", err)
		return
	}

	deleted := 0
	for _, attachmentID := range orphans {
		// Delete is idempotent; an attachment another replica already removed
		// is not an error worth more than a debug line.
		if err := s.attachments.Delete(ctx, attachmentID); err != nil {
			s.logger.Debug("attachment delete failed", "attachment", attachmentID, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.logger.Info("deleted orphaned attachments", "count", deleted)
	}
}

// SetStatus is the manual override for administrative or test-driven status
// changes, bypassing the sweep. Going online stamps lastActiveAt; going
// offline stamps lastSeen.
func (s *Service) SetStatus(ctx context.Context, ref id.SubjectRef, online bool, notify bool) error {
	now := s.clock()

	var err error
	if online {
		err = s.subjects.SetOnline(ctx, ref, now)
	} else {
		err = s.subjects.SetOffline(ctx, ref, now)
	}
	if err != nil {
		return fmt.Errorf("set status %s online=%t: %w", ref.Key(), online, err)
	}

	if notify {
		s.hub.Notify(ref, online)
	}
	s.logger.Info("status override applied", "subject", ref.Key(), "online", online, "broadcast", notify)
	return nil
}

// Stats returns the operational snapshot without mutating any state.
func (s *Service) Stats(ctx context.Context) (models.PresenceStats, error) {
	onlineRegistered, err := s.subjects.CountOnline(ctx, id.KindRegistered)
	if err != nil {
		return models.PresenceStats{}, fmt.Errorf("count online registered: %w", err)
	}
	totalRegistered, err := s.subjects.CountTotal(ctx, id.KindRegistered)
	if err != nil {
		return models.PresenceStats{}, fmt.Errorf("count total registered: %w", err)
	}
	onlineAnon, err := s.subjects.CountOnline(ctx, id.KindAnonymous)
	if err != nil {
		return models.PresenceStats{}, fmt.Errorf("count online anonymous: %w", err)
	}
	totalAnon, err := s.subjects.CountTotal(ctx, id.KindAnonymous)
	if err != nil {
		return models.PresenceStats{}, fmt.Errorf("count total anonymous: %w", err)
	}

	return models.PresenceStats{
		OnlineCount:             onlineRegistered,
		TotalCount:              totalRegistered,
		OnlineAnonymousCount:    onlineAnon,
		TotalAnonymousCount:     totalAnon,
		OfflineThresholdMinutes: int(s.cfg.OfflineThreshold.Minutes()),
		Active:                  s.Active(),
	}, nil
}

func (s *Service) updateOnlineGauges(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	for _, kind := range id.Kinds {
		if count, err := s.subjects.CountOnline(ctx, kind); err == nil {
			s.metrics.OnlineSubjects.WithLabelValues(string(kind)).Set(float64(count))
		}
	}
}
