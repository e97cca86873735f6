package attachments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOrphaned(t *testing.T) {
	var gotOlderThan string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/internal/attachments/orphaned", r.URL.Path)
		gotOlderThan = r.URL.Query().Get("olderThan")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"attachmentIds":["a1","a2"]}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ids, err := client.ListOrphaned(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, ids)
	assert.Equal(t, "2025-06-01T00:00:00Z", gotOlderThan)
}

func TestDeleteTolerance(t *testing.T) {
	statuses := map[string]int{
		"gone":    http.StatusNotFound,
		"deleted": http.StatusNoContent,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(statuses[r.URL.Path[len("/internal/attachments/"):]])
	}))
	defer srv.Close()

	client := New(srv.URL)
	assert.NoError(t, client.Delete(context.Background(), "deleted"))
	assert.NoError(t, client.Delete(context.Background(), "gone"),
		"an attachment another cleanup already removed is not an error")
}

func TestDeleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL)
	assert.Error(t, client.Delete(context.Background(), "a1"))
}

func TestListOrphanedOpensBreaker(t *testing.T) {
	failures := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		failures++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := client.ListOrphaned(context.Background(), time.Now())
		require.Error(t, err)
	}
	assert.True(t, client.breaker.IsOpen())

	// Recovery closes it again.
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"attachmentIds":[]}`))
	})
	_, err := client.ListOrphaned(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, client.breaker.IsOpen())
}
