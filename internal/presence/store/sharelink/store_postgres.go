package sharelink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meeshy/internal/presence/models"
)

// PostgresShareLinkStore persists ephemeral share records.
//
// Expected schema:
//
//	token      TEXT PRIMARY KEY,
//	subject_id TEXT NOT NULL,
//	created_at TIMESTAMPTZ NOT NULL,
//	expires_at TIMESTAMPTZ NOT NULL
type PostgresShareLinkStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresShareLinkStore {
	return &PostgresShareLinkStore{db: db}
}

func (s *PostgresShareLinkStore) Create(ctx context.Context, link *models.ShareLink) error {
	query := `
		INSERT INTO share_links (token, subject_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET
			expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, link.Token, link.SubjectID, link.CreatedAt, link.ExpiresAt); err != nil {
		return fmt.Errorf("create share link: %w", err)
	}
	return nil
}

func (s *PostgresShareLinkStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM share_links WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired share links: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired share links: %w", err)
	}
	return int(deleted), nil
}
