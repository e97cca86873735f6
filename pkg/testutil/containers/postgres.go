//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// presence schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

const presenceSchema = `
CREATE TABLE IF NOT EXISTS registered_subjects (
	id             TEXT PRIMARY KEY,
	is_online      BOOLEAN NOT NULL DEFAULT FALSE,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	last_active_at TIMESTAMPTZ NOT NULL,
	last_seen      TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS anonymous_subjects (
	id             TEXT PRIMARY KEY,
	is_online      BOOLEAN NOT NULL DEFAULT FALSE,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	last_active_at TIMESTAMPTZ NOT NULL,
	last_seen      TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS share_links (
	token      TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgresContainer starts a new PostgreSQL container and applies the
// presence schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("presence_test"),
		tcpostgres.WithUsername("presence"),
		tcpostgres.WithPassword("presence"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.Exec(presenceSchema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply presence schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})

	return &PostgresContainer{Container: container, DB: db}
}

// Truncate clears all presence tables. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx,
		"TRUNCATE registered_subjects, anonymous_subjects, share_links")
	return err
}
