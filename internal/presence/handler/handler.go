// Package handler exposes the presence HTTP surface. Handlers decode and
// validate, delegate to the presence services, and map errors; presence rules
// live in the services.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"meeshy/internal/presence/models"
	id "meeshy/pkg/domain"
	dErrors "meeshy/pkg/domain-errors"
	"meeshy/pkg/platform/httputil"
	"meeshy/pkg/platform/sentinel"
	"meeshy/pkg/requestcontext"
)

// PresenceService covers the reconciler operations the handler needs.
type PresenceService interface {
	Stats(ctx context.Context) (models.PresenceStats, error)
	SetStatus(ctx context.Context, ref id.SubjectRef, online bool, notify bool) error
}

// ActivityService covers the throttled activity path.
type ActivityService interface {
	RecordActivity(ctx context.Context, ref id.SubjectRef) (bool, error)
	Stats(ctx context.Context) models.ThrottleStats
}

// ConnectionService covers the connection-backed push path.
type ConnectionService interface {
	OnConnect(ctx context.Context, ref id.SubjectRef, connectionID string) error
	OnDisconnect(ctx context.Context, connectionID string) error
	ConnectionCount(ref id.SubjectRef) int
}

// Handler wires presence endpoints to the presence services.
type Handler struct {
	presence    PresenceService
	activity    ActivityService
	connections ConnectionService
	logger      *slog.Logger
}

// New constructs a presence handler with its dependencies.
func New(presence PresenceService, activity ActivityService, connections ConnectionService, logger *slog.Logger) *Handler {
	return &Handler{
		presence:    presence,
		activity:    activity,
		connections: connections,
		logger:      logger,
	}
}

// Register mounts presence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/presence/stats", h.HandleStats)
	r.Post("/presence/status", h.HandleSetStatus)
	r.Post("/presence/activity", h.HandleActivity)
	r.Post("/presence/connections", h.HandleConnect)
	r.Delete("/presence/connections/{connectionID}", h.HandleDisconnect)
}

// HandleStats handles GET /presence/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	presence, err := h.presence.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "presence stats failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StatsResponse{
		Presence: presence,
		Throttle: h.activity.Stats(ctx),
	})
}

// HandleActivity handles POST /presence/activity requests.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ActivityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	written, err := h.activity.RecordActivity(ctx, req.Ref())
	if err != nil {
		h.logger.ErrorContext(ctx, "activity signal failed",
			"request_id", requestID,
			"subject", req.Ref().Key(),
			"error", err,
		)
		httputil.WriteError(w, mapStoreError(err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ActivityResponse{Written: written})
}

// HandleSetStatus handles POST /presence/status requests.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.presence.SetStatus(ctx, req.Ref(), req.IsOnline, req.ShouldBroadcast()); err != nil {
		h.logger.ErrorContext(ctx, "status override failed",
			"request_id", requestID,
			"subject", req.Ref().Key(),
			"online", req.IsOnline,
			"error", err,
		)
		httputil.WriteError(w, mapStoreError(err))
		return
	}

	h.logger.InfoContext(ctx, "status override applied",
		"request_id", requestID,
		"subject", req.Ref().Key(),
		"online", req.IsOnline,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		SubjectID: req.Ref().ID,
		Kind:      string(req.Ref().Kind),
		IsOnline:  req.IsOnline,
	})
}

// HandleConnect handles POST /presence/connections requests.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ConnectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	connectionID := req.ConnectionID
	if connectionID == "" {
		connectionID = uuid.NewString()
	}

	if err := h.connections.OnConnect(ctx, req.Ref(), connectionID); err != nil {
		h.logger.ErrorContext(ctx, "connection open failed",
			"request_id", requestID,
			"subject", req.Ref().Key(),
			"connection_id", connectionID,
			"error", err,
		)
		httputil.WriteError(w, mapStoreError(err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ConnectResponse{
		ConnectionID: connectionID,
		Connections:  h.connections.ConnectionCount(req.Ref()),
	})
}

// HandleDisconnect handles DELETE /presence/connections/{connectionID}
// requests. Unknown connection IDs return 204 as well: disconnect is
// idempotent, and transports retry it.
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	connectionID := chi.URLParam(r, "connectionID")
	if connectionID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "connectionID is required"))
		return
	}

	if err := h.connections.OnDisconnect(ctx, connectionID); err != nil {
		// The registry has already released the connection; the failed
		// persistence write is the sweep's problem now.
		h.logger.WarnContext(ctx, "disconnect persisted dirty",
			"request_id", requestcontext.RequestID(ctx),
			"connection_id", connectionID,
			"error", err,
		)
	}

	w.WriteHeader(http.StatusNoContent)
}

// mapStoreError lifts persistence sentinels into client-facing domain errors.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "subject not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting connection state")
	default:
		return err
	}
}
