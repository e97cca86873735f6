package sharelink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeshy/internal/presence/models"
)

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &models.ShareLink{
		Token: "expired", SubjectID: "a", CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, store.Create(ctx, &models.ShareLink{
		Token: "live", SubjectID: "b", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, store.Len())

	// Idempotent: a second sweep finds nothing.
	deleted, err = store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
