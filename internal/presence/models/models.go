// Package models holds the presence domain records shared by the throttle
// cache, the connection registry, and the reconciler.
package models

import (
	"time"

	id "meeshy/pkg/domain"
)

// Subject is the presence view of a registered account or anonymous session
// participant. The record itself is created by registration/session-join flows
// elsewhere; this service only mutates IsOnline, LastActiveAt and LastSeen.
type Subject struct {
	ID   string
	Kind id.SubjectKind

	// IsOnline is the persisted presence bit kept consistent by the push path
	// (registry) and corrected by the pull path (reconciler).
	IsOnline bool

	// IsActive is the soft-delete/eligibility flag. Inactive subjects are
	// ignored by the sweep.
	IsActive bool

	// LastActiveAt is refreshed by throttled activity writes and force
	// updates on connect.
	LastActiveAt time.Time

	// LastSeen is set only on the online→offline transition, never on no-op
	// transitions.
	LastSeen *time.Time
}

// Ref returns the subject's reference for keying and dispatch.
func (s *Subject) Ref() id.SubjectRef {
	return id.SubjectRef{ID: s.ID, Kind: s.Kind}
}

// ConnectionHandle represents one live transport connection. The transport
// layer creates it on connect; the registry owns it until the matching
// disconnect is observed.
type ConnectionHandle struct {
	ConnectionID string
	Subject      id.SubjectRef
	OpenedAt     time.Time
}

// ThrottleEntry is one throttle cache record. Entries are never persisted; a
// cold cache after restart just means the next activity signal is written.
type ThrottleEntry struct {
	Key       string
	LastWrite time.Time
}

// ShareLink is an ephemeral share record cleaned up daily once expired.
type ShareLink struct {
	Token     string
	SubjectID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ThrottleStats are the cumulative counters exposed by the activity throttle
// for operational visibility.
type ThrottleStats struct {
	TotalRequests     int64 `json:"totalRequests"`
	ThrottledRequests int64 `json:"throttledRequests"`
	WritesSucceeded   int64 `json:"writesSucceeded"`
	WritesFailed      int64 `json:"writesFailed"`
	CacheSize         int   `json:"cacheSize"`
}

// PresenceStats is the read-only shape served by the stats endpoint.
type PresenceStats struct {
	OnlineCount             int  `json:"onlineCount"`
	TotalCount              int  `json:"totalCount"`
	OnlineAnonymousCount    int  `json:"onlineAnonymousCount"`
	TotalAnonymousCount     int  `json:"totalAnonymousCount"`
	OfflineThresholdMinutes int  `json:"offlineThresholdMinutes"`
	Active                  bool `json:"active"`
}
