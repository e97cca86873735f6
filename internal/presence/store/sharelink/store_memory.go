package sharelink

import (
	"context"
	"sync"
	"time"

	"meeshy/internal/presence/models"
)

// InMemoryShareLinkStore keeps ephemeral share records in a map.
type InMemoryShareLinkStore struct {
	mu    sync.Mutex
	links map[string]*models.ShareLink
}

func NewInMemory() *InMemoryShareLinkStore {
	return &InMemoryShareLinkStore{links: make(map[string]*models.ShareLink)}
}

func (s *InMemoryShareLinkStore) Create(_ context.Context, link *models.ShareLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *link
	s.links[link.Token] = &clone
	return nil
}

// DeleteExpired hard-deletes links past their expiry and returns the count.
func (s *InMemoryShareLinkStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for token, link := range s.links {
		if link.ExpiresAt.Before(now) {
			delete(s.links, token)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored links. Test helper.
func (s *InMemoryShareLinkStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}
