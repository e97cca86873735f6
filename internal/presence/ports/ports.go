// Package ports defines shared interfaces for the presence module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"meeshy/internal/presence/models"
	id "meeshy/pkg/domain"
)

// SubjectStore is the persistence collaborator for presence state. Stores are
// pure I/O; staleness thresholds and transition rules live in the services.
// Missing records surface as sentinel.ErrNotFound so callers can skip them.
type SubjectStore interface {
	// ReadStale returns subjects of the given kind that are online, active,
	// and whose lastActiveAt is older than the threshold.
	ReadStale(ctx context.Context, kind id.SubjectKind, threshold time.Time) ([]*models.Subject, error)

	// BatchSetOffline flips the given subjects offline and stamps lastSeen.
	BatchSetOffline(ctx context.Context, kind id.SubjectKind, ids []string, now time.Time) error

	// SetOnline marks a subject online and refreshes lastActiveAt.
	SetOnline(ctx context.Context, ref id.SubjectRef, now time.Time) error

	// SetOffline marks a subject offline and stamps lastSeen.
	SetOffline(ctx context.Context, ref id.SubjectRef, now time.Time) error

	// SetLastActive refreshes lastActiveAt without touching the online bit.
	SetLastActive(ctx context.Context, ref id.SubjectRef, now time.Time) error

	// DeleteInactiveAnonymous hard-deletes anonymous subjects whose
	// lastActiveAt is older than the cutoff. Registered subjects are never
	// deleted by this service.
	DeleteInactiveAnonymous(ctx context.Context, cutoff time.Time) (int, error)

	// CountOnline returns the number of online subjects of the given kind.
	CountOnline(ctx context.Context, kind id.SubjectKind) (int, error)

	// CountTotal returns the number of subjects of the given kind.
	CountTotal(ctx context.Context, kind id.SubjectKind) (int, error)
}

// ThrottleStore tracks the last persisted activity write per subject key.
// The in-memory implementation is per-process; the Redis implementation makes
// the throttle window hold across replicas.
type ThrottleStore interface {
	// TryAcquire reports whether a write is allowed for the key, and if so
	// records now as the key's last write in the same step.
	TryAcquire(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error)

	// Touch unconditionally records now as the key's last write (force path).
	Touch(ctx context.Context, key string, now time.Time) error

	// Evict removes entries older than maxAge and returns how many were
	// dropped. TTL-based stores may treat this as a no-op.
	Evict(ctx context.Context, maxAge time.Duration) (int, error)

	// Size returns the current number of tracked keys.
	Size(ctx context.Context) (int, error)
}

// ShareLinkStore manages ephemeral share records swept by the daily cleanup.
type ShareLinkStore interface {
	Create(ctx context.Context, link *models.ShareLink) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// AttachmentService is the external collaborator the daily cleanup delegates
// orphaned-attachment deletion to. Delete is idempotent and tolerant of
// already-gone attachments.
type AttachmentService interface {
	ListOrphaned(ctx context.Context, olderThan time.Time) ([]string, error)
	Delete(ctx context.Context, attachmentID string) error
}
