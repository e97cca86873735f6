package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"meeshy/internal/presence/broadcast"
	"meeshy/internal/presence/models"
	sharelinkstore "meeshy/internal/presence/store/sharelink"
	subjectstore "meeshy/internal/presence/store/subject"
	id "meeshy/pkg/domain"
	"meeshy/pkg/platform/sentinel"
)

type fakeAttachments struct {
	mu       sync.Mutex
	orphans  []string
	deleted  []string
	failList bool
}

func (f *fakeAttachments) ListOrphaned(_ context.Context, _ time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errors.New("attachment service unavailable")
	}
	return append([]string(nil), f.orphans...), nil
}

func (f *fakeAttachments) Delete(_ context.Context, attachmentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if attachmentID == "already-gone" {
		return sentinel.ErrNotFound
	}
	f.deleted = append(f.deleted, attachmentID)
	return nil
}

type notification struct {
	subject id.SubjectRef
	online  bool
}

type ReconcilerSuite struct {
	suite.Suite
	ctx         context.Context
	subjects    *subjectstore.InMemorySubjectStore
	shareLinks  *sharelinkstore.InMemoryShareLinkStore
	attachments *fakeAttachments
	hub         *broadcast.Hub
	svc         *Service

	mu       sync.Mutex
	notified []notification

	now time.Time
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.ctx = context.Background()
	s.subjects = subjectstore.NewInMemory()
	s.shareLinks = sharelinkstore.NewInMemory()
	s.attachments = &fakeAttachments{}
	s.hub = broadcast.New()
	s.notified = nil
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.hub.SetCallback(func(subject id.SubjectRef, online bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.notified = append(s.notified, notification{subject: subject, online: online})
	})

	var err error
	s.svc, err = New(s.subjects, s.shareLinks, s.attachments, s.hub, Config{
		OfflineThreshold:            5 * time.Minute,
		MaintenanceInterval:         15 * time.Second,
		CleanupCheckInterval:        time.Hour,
		AnonymousSessionTTL:         24 * time.Hour,
		OrphanedAttachmentThreshold: 24 * time.Hour,
		CleanupWindowStartHour:      2,
		CleanupWindowEndHour:        3,
	}, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
}

func (s *ReconcilerSuite) seedSubject(subjectID string, kind id.SubjectKind, online bool, lastActive time.Time) {
	s.Require().NoError(s.subjects.Put(s.ctx, &models.Subject{
		ID:           subjectID,
		Kind:         kind,
		IsOnline:     online,
		IsActive:     true,
		LastActiveAt: lastActive,
	}))
}

func (s *ReconcilerSuite) snapshotNotified() []notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification(nil), s.notified...)
}

func (s *ReconcilerSuite) TestSweepFlipsOnlyStaleSubjects() {
	s.seedSubject("stale", id.KindRegistered, true, s.now.Add(-7*time.Minute))
	s.seedSubject("fresh", id.KindRegistered, true, s.now.Add(-2*time.Minute))
	s.seedSubject("stale-anon", id.KindAnonymous, true, s.now.Add(-10*time.Minute))

	s.svc.sweep(s.ctx)

	stale, err := s.subjects.Get(s.ctx, id.SubjectRef{ID: "stale", Kind: id.KindRegistered})
	s.Require().NoError(err)
	s.False(stale.IsOnline)
	s.Require().NotNil(stale.LastSeen)
	s.Equal(s.now, *stale.LastSeen)

	fresh, err := s.subjects.Get(s.ctx, id.SubjectRef{ID: "fresh", Kind: id.KindRegistered})
	s.Require().NoError(err)
	s.True(fresh.IsOnline)
	s.Nil(fresh.LastSeen)

	notified := s.snapshotNotified()
	s.Require().Len(notified, 2)
	for _, n := range notified {
		s.False(n.online)
	}
}

func (s *ReconcilerSuite) TestSweepSkipsOfflineSubjects() {
	s.seedSubject("parked", id.KindRegistered, false, s.now.Add(-time.Hour))

	s.svc.sweep(s.ctx)

	parked, err := s.subjects.Get(s.ctx, id.SubjectRef{ID: "parked", Kind: id.KindRegistered})
	s.Require().NoError(err)
	s.False(parked.IsOnline)
	s.Nil(parked.LastSeen, "offline subjects must not get a new lastSeen from the sweep")
	s.Empty(s.snapshotNotified())
}

func (s *ReconcilerSuite) TestSweepIsIdempotent() {
	s.seedSubject("stale", id.KindRegistered, true, s.now.Add(-7*time.Minute))

	s.svc.sweep(s.ctx)
	firstSeen, err := s.subjects.Get(s.ctx, id.SubjectRef{ID: "stale", Kind: id.KindRegistered})
	s.Require().NoError(err)

	s.now = s.now.Add(time.Minute)
	s.svc.sweep(s.ctx)

	secondSeen, err := s.subjects.Get(s.ctx, id.SubjectRef{ID: "stale", Kind: id.KindRegistered})
	s.Require().NoError(err)
	s.Equal(*firstSeen.LastSeen, *secondSeen.LastSeen, "a second sweep must not restamp lastSeen")
	s.Len(s.snapshotNotified(), 1, "only the first sweep broadcasts the flip")
}

func (s *ReconcilerSuite) TestSweepSurvivesPanickingCallback() {
	s.seedSubject("stale", id.KindRegistered, true, s.now.Add(-7*time.Minute))
	s.hub.SetCallback(func(id.SubjectRef, bool) {
		panic("transport fanout gone")
	})

	s.NotPanics(func() { s.svc.sweep(s.ctx) })

	// The flip itself still lands; only the delivery was lost.
	subject, err := s.subjects.Get(s.ctx, id.SubjectRef{ID: "stale", Kind: id.KindRegistered})
	s.Require().NoError(err)
	s.False(subject.IsOnline)
}

func (s *ReconcilerSuite) TestDailyCleanupRunsOncePerDay() {
	s.seedSubject("old-anon", id.KindAnonymous, false, s.now.Add(-25*time.Hour))
	s.seedSubject("fresh-anon", id.KindAnonymous, false, s.now.Add(-time.Hour))

	// Outside the [02:00, 03:00) window: nothing happens.
	s.svc.maybeRunDailyCleanup(s.ctx)
	total, err := s.subjects.CountTotal(s.ctx, id.KindAnonymous)
	s.Require().NoError(err)
	s.Equal(2, total)

	// Inside the window the first check runs the cleanup.
	s.now = time.Date(2025, 6, 2, 2, 15, 0, 0, time.UTC)
	s.svc.maybeRunDailyCleanup(s.ctx)
	total, err = s.subjects.CountTotal(s.ctx, id.KindAnonymous)
	s.Require().NoError(err)
	s.Equal(1, total)

	// A second check the same day is a no-op even after more data expires.
	s.seedSubject("another-old-anon", id.KindAnonymous, false, s.now.Add(-26*time.Hour))
	s.now = s.now.Add(20 * time.Minute)
	s.svc.maybeRunDailyCleanup(s.ctx)
	total, err = s.subjects.CountTotal(s.ctx, id.KindAnonymous)
	s.Require().NoError(err)
	s.Equal(2, total)

	// The next day inside the window it runs again.
	s.now = time.Date(2025, 6, 3, 2, 5, 0, 0, time.UTC)
	s.svc.maybeRunDailyCleanup(s.ctx)
	total, err = s.subjects.CountTotal(s.ctx, id.KindAnonymous)
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *ReconcilerSuite) TestDailyCleanupSweepsShareLinksAndAttachments() {
	s.Require().NoError(s.shareLinks.Create(s.ctx, &models.ShareLink{
		Token:     "expired",
		SubjectID: "a",
		ExpiresAt: s.now.Add(-time.Minute),
	}))
	s.Require().NoError(s.shareLinks.Create(s.ctx, &models.ShareLink{
		Token:     "live",
		SubjectID: "b",
		ExpiresAt: s.now.Add(time.Hour),
	}))
	s.attachments.orphans = []string{"orphan-1", "already-gone", "orphan-2"}

	s.svc.runDailyCleanup(s.ctx, s.now)

	s.Equal(1, s.shareLinks.Len())
	s.Equal([]string{"orphan-1", "orphan-2"}, s.attachments.deleted,
		"an already-deleted attachment must not stop the rest of the batch")
}

func (s *ReconcilerSuite) TestDailyCleanupToleratesAttachmentServiceOutage() {
	s.attachments.failList = true
	s.seedSubject("old-anon", id.KindAnonymous, false, s.now.Add(-25*time.Hour))

	s.svc.runDailyCleanup(s.ctx, s.now)

	total, err := s.subjects.CountTotal(s.ctx, id.KindAnonymous)
	s.Require().NoError(err)
	s.Equal(0, total, "subject cleanup proceeds even when the attachment service is down")
}

func (s *ReconcilerSuite) TestSetStatusBroadcastsExactlyOnce() {
	s.seedSubject("alice", id.KindRegistered, false, s.now.Add(-time.Hour))
	ref := id.SubjectRef{ID: "alice", Kind: id.KindRegistered}

	s.Require().NoError(s.svc.SetStatus(s.ctx, ref, true, true))

	subject, err := s.subjects.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.True(subject.IsOnline)
	s.Equal(s.now, subject.LastActiveAt)

	notified := s.snapshotNotified()
	s.Require().Len(notified, 1)
	s.Equal(ref, notified[0].subject)
	s.True(notified[0].online)
	s.False(notified[0].subject.IsAnonymous())
}

func (s *ReconcilerSuite) TestSetStatusWithoutBroadcast() {
	s.seedSubject("alice", id.KindRegistered, true, s.now)
	ref := id.SubjectRef{ID: "alice", Kind: id.KindRegistered}

	s.Require().NoError(s.svc.SetStatus(s.ctx, ref, false, false))

	subject, err := s.subjects.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.False(subject.IsOnline)
	s.Empty(s.snapshotNotified())
}

func (s *ReconcilerSuite) TestSetStatusUnknownSubject() {
	err := s.svc.SetStatus(s.ctx, id.SubjectRef{ID: "ghost", Kind: id.KindRegistered}, true, true)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Empty(s.snapshotNotified(), "a failed write must not broadcast")
}

func (s *ReconcilerSuite) TestStatsReflectsLifecycle() {
	s.seedSubject("a", id.KindRegistered, true, s.now)
	s.seedSubject("b", id.KindRegistered, false, s.now)
	s.seedSubject("c", id.KindAnonymous, true, s.now)

	stats, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.OnlineCount)
	s.Equal(2, stats.TotalCount)
	s.Equal(1, stats.OnlineAnonymousCount)
	s.Equal(1, stats.TotalAnonymousCount)
	s.Equal(5, stats.OfflineThresholdMinutes)
	s.False(stats.Active, "not started yet")

	s.svc.Start()
	stats, err = s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.True(stats.Active)

	s.svc.Stop()
	stats, err = s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.False(stats.Active)
}

func (s *ReconcilerSuite) TestLifecycleIdempotent() {
	s.svc.Start()
	s.svc.Start()
	s.True(s.svc.Active())

	s.svc.Stop()
	s.svc.Stop()
	s.False(s.svc.Active())

	s.svc.Start()
	s.True(s.svc.Active())
	s.svc.Stop()
}
