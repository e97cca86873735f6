package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"meeshy/internal/presence/broadcast"
	"meeshy/internal/presence/models"
	"meeshy/internal/presence/ports/mocks"
	id "meeshy/pkg/domain"
)

// Failure-path tests use mocks so storage errors can be injected precisely.
// The happy paths are covered with real in-memory stores in reconciler_test.go.
type ReconcilerFailureSuite struct {
	suite.Suite
	ctx         context.Context
	ctrl        *gomock.Controller
	subjects    *mocks.MockSubjectStore
	shareLinks  *mocks.MockShareLinkStore
	attachments *mocks.MockAttachmentService
	svc         *Service
	now         time.Time
}

func TestReconcilerFailureSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerFailureSuite))
}

func (s *ReconcilerFailureSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.subjects = mocks.NewMockSubjectStore(s.ctrl)
	s.shareLinks = mocks.NewMockShareLinkStore(s.ctrl)
	s.attachments = mocks.NewMockAttachmentService(s.ctrl)
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var err error
	s.svc, err = New(s.subjects, s.shareLinks, s.attachments, broadcast.New(), Config{
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

func (s *ReconcilerFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ReconcilerFailureSuite) TestSweepContinuesAfterReadFailure() {
	threshold := s.now.Add(-5 * time.Minute)

	// The registered query fails; the anonymous kind must still be swept.
	s.subjects.EXPECT().ReadStale(s.ctx, id.KindRegistered, threshold).
		Return(nil, errors.New("connection reset"))
	s.subjects.EXPECT().ReadStale(s.ctx, id.KindAnonymous, threshold).
		Return([]*models.Subject{{ID: "zombie", Kind: id.KindAnonymous, IsOnline: true, IsActive: true}}, nil)
	s.subjects.EXPECT().BatchSetOffline(s.ctx, id.KindAnonymous, []string{"zombie"}, s.now).
		Return(nil)

	s.svc.sweep(s.ctx)
}

func (s *ReconcilerFailureSuite) TestSweepSkipsNotifyWhenBatchWriteFails() {
	threshold := s.now.Add(-5 * time.Minute)

	s.subjects.EXPECT().ReadStale(s.ctx, id.KindRegistered, threshold).
		Return([]*models.Subject{{ID: "zombie", Kind: id.KindRegistered, IsOnline: true, IsActive: true}}, nil)
	s.subjects.EXPECT().BatchSetOffline(s.ctx, id.KindRegistered, []string{"zombie"}, s.now).
		Return(errors.New("write failed"))
	s.subjects.EXPECT().ReadStale(s.ctx, id.KindAnonymous, threshold).
		Return(nil, nil)

	notified := 0
	hub := broadcast.New()
	hub.SetCallback(func(id.SubjectRef, bool) { notified++ })
	s.svc.hub = hub

	s.svc.sweep(s.ctx)
	s.Zero(notified, "an unpersisted flip must not be broadcast")
}

func (s *ReconcilerFailureSuite) TestDailyCleanupOutlivesEachFailure() {
	// All three tasks fail; the run must still visit every one, and the
	// at-most-once-per-day guard already consumed today.
	s.subjects.EXPECT().DeleteInactiveAnonymous(gomock.Any(), s.now.Add(-24*time.Hour)).
		Return(0, errors.New("db down"))
	s.shareLinks.EXPECT().DeleteExpired(gomock.Any(), s.now).
		Return(0, errors.New("db down"))
	s.attachments.EXPECT().ListOrphaned(gomock.Any(), s.now.Add(-24*time.Hour)).
		Return(nil, errors.New("file service down"))

	s.svc.runDailyCleanup(s.ctx, s.now)
}

func (s *ReconcilerFailureSuite) TestDailyCleanupDeletesRemainingOrphansAfterOneFails() {
	s.subjects.EXPECT().DeleteInactiveAnonymous(gomock.Any(), gomock.Any()).Return(0, nil)
	s.shareLinks.EXPECT().DeleteExpired(gomock.Any(), gomock.Any()).Return(0, nil)
	s.attachments.EXPECT().ListOrphaned(gomock.Any(), gomock.Any()).
		Return([]string{"a1", "a2", "a3"}, nil)
	s.attachments.EXPECT().Delete(gomock.Any(), "a1").Return(nil)
	s.attachments.EXPECT().Delete(gomock.Any(), "a2").Return(errors.New("locked"))
	s.attachments.EXPECT().Delete(gomock.Any(), "a3").Return(nil)

	s.svc.runDailyCleanup(s.ctx, s.now)
}
