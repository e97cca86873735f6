// Package broadcast decouples presence state changes from their delivery. The
// registry and the reconciler notify through a single replaceable callback;
// the transport layer registers an implementation at wiring time, possibly
// after presence has already started.
package broadcast

import (
	"log/slog"
	"sync"

	"meeshy/internal/presence/metrics"
	id "meeshy/pkg/domain"
)

// Callback receives a status flip for one subject.
type Callback func(subject id.SubjectRef, online bool)

// Hub stores at most one registered callback. When none is registered,
// notifications are silently dropped: the persisted state is still correct,
// only live delivery is skipped.
type Hub struct {
	mu       sync.RWMutex
	callback Callback
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

func New(opts ...Option) *Hub {
	h := &Hub{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetCallback replaces the registered callback. Passing nil unregisters it.
func (h *Hub) SetCallback(cb Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = cb
}

// Notify delivers a status flip to the registered callback, if any. A
// panicking callback is contained here and counted as a dropped broadcast:
// the registry and the reconciler call Notify from request paths and timer
// goroutines that must survive a broken transport.
func (h *Hub) Notify(subject id.SubjectRef, online bool) {
	h.mu.RLock()
	cb := h.callback
	h.mu.RUnlock()

	if cb == nil {
		if h.metrics != nil {
			h.metrics.BroadcastsDropped.Inc()
		}
		return
	}
	h.deliver(cb, subject, online)
}

func (h *Hub) deliver(cb Callback, subject id.SubjectRef, online bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("status callback panicked, notification dropped",
				"subject", subject.Key(), "online", online, "panic", r)
			if h.metrics != nil {
				h.metrics.BroadcastsDropped.Inc()
			}
		}
	}()
	cb(subject, online)
	if h.metrics != nil {
		h.metrics.StatusBroadcasts.Inc()
	}
}
