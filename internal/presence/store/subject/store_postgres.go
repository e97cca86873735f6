package subject

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"meeshy/internal/presence/models"
	id "meeshy/pkg/domain"
	"meeshy/pkg/platform/sentinel"
)

// PostgresSubjectStore persists presence state in PostgreSQL. Registered and
// anonymous subjects live in separate tables with identical presence columns;
// the store dispatches on kind so the services stay kind-agnostic.
//
// Expected schema per table:
//
//	id             TEXT PRIMARY KEY,
//	is_online      BOOLEAN NOT NULL DEFAULT FALSE,
//	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
//	last_active_at TIMESTAMPTZ NOT NULL,
//	last_seen      TIMESTAMPTZ
type PostgresSubjectStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresSubjectStore {
	return &PostgresSubjectStore{db: db}
}

func tableFor(kind id.SubjectKind) string {
	if kind == id.KindAnonymous {
		return "anonymous_subjects"
	}
	return "registered_subjects"
}

func (s *PostgresSubjectStore) ReadStale(ctx context.Context, kind id.SubjectKind, threshold time.Time) ([]*models.Subject, error) {
	query := fmt.Sprintf(`
		SELECT id, is_online, is_active, last_active_at, last_seen
		FROM %s
		WHERE is_online = TRUE AND is_active = TRUE AND last_active_at < $1
	`, tableFor(kind))

	rows, err := s.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("read stale subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*models.Subject
	for rows.Next() {
		subject := &models.Subject{Kind: kind}
		var lastSeen sql.NullTime
		if err := rows.Scan(&subject.ID, &subject.IsOnline, &subject.IsActive, &subject.LastActiveAt, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan stale subject: %w", err)
		}
		if lastSeen.Valid {
			subject.LastSeen = &lastSeen.Time
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read stale subjects: %w", err)
	}
	return subjects, nil
}

// BatchSetOffline flips all given ids in one statement. The is_online guard
// keeps lastSeen untouched for subjects that went offline concurrently.
func (s *PostgresSubjectStore) BatchSetOffline(ctx context.Context, kind id.SubjectKind, ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_online = FALSE, last_seen = $2
		WHERE id = ANY($1) AND is_online = TRUE
	`, tableFor(kind))

	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids), now); err != nil {
		return fmt.Errorf("batch set offline: %w", err)
	}
	return nil
}

func (s *PostgresSubjectStore) SetOnline(ctx context.Context, ref id.SubjectRef, now time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_online = TRUE, last_active_at = $2
		WHERE id = $1
	`, tableFor(ref.Kind))

	return s.execOne(ctx, query, ref.ID, now)
}

func (s *PostgresSubjectStore) SetOffline(ctx context.Context, ref id.SubjectRef, now time.Time) error {
	// lastSeen is stamped only on a true online→offline transition.
	query := fmt.Sprintf(`
		UPDATE %s
		SET last_seen = CASE WHEN is_online THEN $2 ELSE last_seen END,
		    is_online = FALSE
		WHERE id = $1
	`, tableFor(ref.Kind))

	return s.execOne(ctx, query, ref.ID, now)
}

func (s *PostgresSubjectStore) SetLastActive(ctx context.Context, ref id.SubjectRef, now time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET last_active_at = $2
		WHERE id = $1
	`, tableFor(ref.Kind))

	return s.execOne(ctx, query, ref.ID, now)
}

func (s *PostgresSubjectStore) DeleteInactiveAnonymous(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM anonymous_subjects
		WHERE last_active_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete inactive anonymous subjects: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete inactive anonymous subjects: %w", err)
	}
	return int(deleted), nil
}

func (s *PostgresSubjectStore) CountOnline(ctx context.Context, kind id.SubjectKind) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE is_online = TRUE`, tableFor(kind))
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count online subjects: %w", err)
	}
	return count, nil
}

func (s *PostgresSubjectStore) CountTotal(ctx context.Context, kind id.SubjectKind) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableFor(kind))
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}

func (s *PostgresSubjectStore) execOne(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
