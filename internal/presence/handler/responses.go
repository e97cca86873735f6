package handler

import "meeshy/internal/presence/models"

// StatsResponse is the HTTP response body for GET /presence/stats.
type StatsResponse struct {
	Presence models.PresenceStats `json:"presence"`
	Throttle models.ThrottleStats `json:"throttle"`
}

// ActivityResponse reports whether an activity signal reached persistence.
type ActivityResponse struct {
	Written bool `json:"written"`
}

// StatusResponse acknowledges a manual status override.
type StatusResponse struct {
	SubjectID string `json:"subjectId"`
	Kind      string `json:"kind"`
	IsOnline  bool   `json:"isOnline"`
}

// ConnectResponse returns the (possibly minted) connection identifier and the
// subject's resulting connection count.
type ConnectResponse struct {
	ConnectionID string `json:"connectionId"`
	Connections  int    `json:"connections"`
}
