// Package registry tracks live transport connections per subject and drives
// the push path of presence: online on first connect, offline on last
// disconnect. It owns no timers; the external transport calls it on socket
// lifecycle events.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"meeshy/internal/presence/broadcast"
	"meeshy/internal/presence/metrics"
	"meeshy/internal/presence/models"
	"meeshy/internal/presence/throttle"
	id "meeshy/pkg/domain"
	"meeshy/pkg/platform/sentinel"
)

// Registry maps subjects to their open connections with a reverse index from
// connection to subject, so disconnects resolve in O(1).
type Registry struct {
	throttle *throttle.Service
	hub      *broadcast.Hub
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// mu guards the maps only and is never held across a persistence call.
	// Transitions of one subject are serialized by a per-subject lock so a
	// slow write for one subject cannot stall connects of another.
	mu          sync.Mutex
	connections map[string]map[string]*models.ConnectionHandle // subject key → connID → handle
	bySubject   map[string]id.SubjectRef                       // subject key → ref
	byConn      map[string]string                              // connID → subject key
	locks       map[string]*subjectLock                        // subject key → transition lock
}

// subjectLock serializes transitions of one subject. refs counts holders and
// waiters so the entry can be dropped once nobody wants it.
type subjectLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New constructs a connection registry. The throttle service performs the
// force-path persistence writes; the hub delivers status flips.
func New(throttleSvc *throttle.Service, hub *broadcast.Hub, opts ...Option) (*Registry, error) {
	if throttleSvc == nil {
		return nil, fmt.Errorf("throttle service is required")
	}
	if hub == nil {
		return nil, fmt.Errorf("broadcast hub is required")
	}

	r := &Registry{
		throttle:    throttleSvc,
		hub:         hub,
		logger:      slog.Default(),
		connections: make(map[string]map[string]*models.ConnectionHandle),
		bySubject:   make(map[string]id.SubjectRef),
		byConn:      make(map[string]string),
		locks:       make(map[string]*subjectLock),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// lockSubject acquires the transition lock for a subject key.
func (r *Registry) lockSubject(key string) *subjectLock {
	r.mu.Lock()
	l := r.locks[key]
	if l == nil {
		l = &subjectLock{}
		r.locks[key] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return l
}

// unlockSubject releases the transition lock, dropping the entry once idle.
func (r *Registry) unlockSubject(key string, l *subjectLock) {
	l.mu.Unlock()

	r.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, key)
	}
	r.mu.Unlock()
}

// OnConnect registers a new live connection. On the 0→1 transition the
// subject is persisted online synchronously and the flip is broadcast; the
// persistence error propagates so the transport can retry or degrade. Repeat
// connects only refresh lastActiveAt through the throttled path.
func (r *Registry) OnConnect(ctx context.Context, ref id.SubjectRef, connectionID string) error {
	key := ref.Key()
	lock := r.lockSubject(key)
	defer r.unlockSubject(key, lock)

	r.mu.Lock()
	if existing, ok := r.byConn[connectionID]; ok {
		r.mu.Unlock()
		if existing != key {
			return fmt.Errorf("connection %s already registered to another subject: %w", connectionID, sentinel.ErrConflict)
		}
		return nil // duplicate connect event for the same socket
	}
	first := len(r.connections[key]) == 0
	r.mu.Unlock()

	if first {
		// Persist before registering the connection so a failed write leaves
		// the registry consistent with storage. The subject lock is held, so
		// no other transition of this subject can interleave.
		if err := r.throttle.ForceOnline(ctx, ref); err != nil {
			return err
		}
	}

	r.mu.Lock()
	// A racing connect under another subject's lock may have claimed the
	// connection id meanwhile. The spurious online write above is corrected
	// by the reconciliation sweep.
	if other, ok := r.byConn[connectionID]; ok && other != key {
		r.mu.Unlock()
		return fmt.Errorf("connection %s already registered to another subject: %w", connectionID, sentinel.ErrConflict)
	}
	conns := r.connections[key]
	if conns == nil {
		conns = make(map[string]*models.ConnectionHandle)
		r.connections[key] = conns
	}
	conns[connectionID] = &models.ConnectionHandle{
		ConnectionID: connectionID,
		Subject:      ref,
		OpenedAt:     time.Now(),
	}
	r.bySubject[key] = ref
	r.byConn[connectionID] = key
	open := len(conns)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.ConnectionsOpen.Inc()
	}

	if first {
		r.hub.Notify(ref, true)
		r.logger.Info("subject online", "subject", key, "connection", connectionID)
	} else {
		// Already online; an extra socket is just activity.
		if _, err := r.throttle.RecordActivity(ctx, ref); err != nil {
			r.logger.Warn("activity refresh on repeat connect failed", "subject", key, "error", err)
		}
		r.logger.Debug("additional connection", "subject", key, "connections", open)
	}
	return nil
}

// OnDisconnect removes a connection. On the 1→0 transition the subject is
// persisted offline (stamping lastSeen) and the flip is broadcast. A subject
// with other sockets open stays online. Unknown connection ids are a no-op:
// the transport may emit duplicate disconnects during shutdown.
func (r *Registry) OnDisconnect(ctx context.Context, connectionID string) error {
	r.mu.Lock()
	key, ok := r.byConn[connectionID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	lock := r.lockSubject(key)
	defer r.unlockSubject(key, lock)

	r.mu.Lock()
	// A duplicate disconnect may have won the lock first.
	if current, ok := r.byConn[connectionID]; !ok || current != key {
		r.mu.Unlock()
		return nil
	}
	ref := r.bySubject[key]
	last := len(r.connections[key]) == 1
	r.mu.Unlock()

	if last {
		if err := r.throttle.ForceOffline(ctx, ref); err != nil {
			// The connection is gone regardless; drop it and let the
			// reconciliation sweep correct the persisted state.
			r.logger.Error("offline write failed, sweep will reconcile", "subject", key, "error", err)
			r.dropConnection(key, connectionID)
			r.hub.Notify(ref, false)
			return err
		}
	}

	remaining := r.dropConnection(key, connectionID)

	if last {
		r.hub.Notify(ref, false)
		r.logger.Info("subject offline", "subject", key, "connection", connectionID)
	} else {
		r.logger.Debug("connection closed, others remain", "subject", key, "connections", remaining)
	}
	return nil
}

// ConnectionCount returns the number of live connections for a subject.
func (r *Registry) ConnectionCount(ref id.SubjectRef) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connections[ref.Key()])
}

// IsConnected reports whether the subject has at least one live connection.
func (r *Registry) IsConnected(ref id.SubjectRef) bool {
	return r.ConnectionCount(ref) > 0
}

// dropConnection removes one handle and the indexes pointing at it,
// returning the subject's remaining connection count.
func (r *Registry) dropConnection(key, connectionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.ConnectionsOpen.Dec()
	}
	delete(r.byConn, connectionID)
	conns := r.connections[key]
	delete(conns, connectionID)
	remaining := len(conns)
	if remaining == 0 {
		delete(r.connections, key)
		delete(r.bySubject, key)
	}
	return remaining
}
