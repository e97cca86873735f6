package subject

import (
	"context"
	"sync"
	"time"

	"meeshy/internal/presence/models"
	id "meeshy/pkg/domain"
	"meeshy/pkg/platform/sentinel"
)

// InMemorySubjectStore keeps both subject kinds in kind-partitioned maps. Used
// in tests and when no DATABASE_URL is configured.
type InMemorySubjectStore struct {
	mu       sync.RWMutex
	subjects map[id.SubjectKind]map[string]*models.Subject
}

func NewInMemory() *InMemorySubjectStore {
	return &InMemorySubjectStore{
		subjects: map[id.SubjectKind]map[string]*models.Subject{
			id.KindRegistered: {},
			id.KindAnonymous:  {},
		},
	}
}

// Put inserts or replaces a subject record. Registration/session-join flows
// own record creation in production; tests seed through this.
func (s *InMemorySubjectStore) Put(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *subject
	s.subjects[subject.Kind][subject.ID] = &clone
	return nil
}

// Get returns a copy of the subject record.
func (s *InMemorySubjectStore) Get(_ context.Context, ref id.SubjectRef) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjects[ref.Kind][ref.ID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *subject
	return &clone, nil
}

func (s *InMemorySubjectStore) ReadStale(_ context.Context, kind id.SubjectKind, threshold time.Time) ([]*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []*models.Subject
	for _, subject := range s.subjects[kind] {
		if subject.IsOnline && subject.IsActive && subject.LastActiveAt.Before(threshold) {
			clone := *subject
			stale = append(stale, &clone)
		}
	}
	return stale, nil
}

func (s *InMemorySubjectStore) BatchSetOffline(_ context.Context, kind id.SubjectKind, ids []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, subjectID := range ids {
		subject, ok := s.subjects[kind][subjectID]
		if !ok {
			continue // record vanished between read and write; sweep skips it
		}
		if !subject.IsOnline {
			continue // offline→offline no-op must not stamp lastSeen
		}
		subject.IsOnline = false
		seen := now
		subject.LastSeen = &seen
	}
	return nil
}

func (s *InMemorySubjectStore) SetOnline(_ context.Context, ref id.SubjectRef, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[ref.Kind][ref.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	subject.IsOnline = true
	subject.LastActiveAt = now
	return nil
}

func (s *InMemorySubjectStore) SetOffline(_ context.Context, ref id.SubjectRef, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[ref.Kind][ref.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if subject.IsOnline {
		seen := now
		subject.LastSeen = &seen
	}
	subject.IsOnline = false
	return nil
}

func (s *InMemorySubjectStore) SetLastActive(_ context.Context, ref id.SubjectRef, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[ref.Kind][ref.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	subject.LastActiveAt = now
	return nil
}

func (s *InMemorySubjectStore) DeleteInactiveAnonymous(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for subjectID, subject := range s.subjects[id.KindAnonymous] {
		if subject.LastActiveAt.Before(cutoff) {
			delete(s.subjects[id.KindAnonymous], subjectID)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemorySubjectStore) CountOnline(_ context.Context, kind id.SubjectKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, subject := range s.subjects[kind] {
		if subject.IsOnline {
			count++
		}
	}
	return count, nil
}

func (s *InMemorySubjectStore) CountTotal(_ context.Context, kind id.SubjectKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subjects[kind]), nil
}
