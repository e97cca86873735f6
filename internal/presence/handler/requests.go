package handler

import (
	"strings"

	id "meeshy/pkg/domain"
	dErrors "meeshy/pkg/domain-errors"
)

// subjectFields is the common subject-identification part of request bodies.
type subjectFields struct {
	SubjectID string `json:"subjectId"`
	Kind      string `json:"kind"`

	parsedRef id.SubjectRef
}

func (f *subjectFields) validate() error {
	f.SubjectID = strings.TrimSpace(f.SubjectID)
	if f.SubjectID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "subjectId is required")
	}
	if len(f.SubjectID) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "subjectId must be at most 128 characters")
	}

	kind, err := id.ParseSubjectKind(strings.TrimSpace(f.Kind))
	if err != nil {
		return err
	}

	ref, err := id.NewSubjectRef(f.SubjectID, kind)
	if err != nil {
		return err
	}
	f.parsedRef = ref
	return nil
}

// Ref returns the validated subject reference.
func (f *subjectFields) Ref() id.SubjectRef {
	return f.parsedRef
}

// ActivityRequest is the HTTP request body for POST /presence/activity.
type ActivityRequest struct {
	subjectFields
}

func (r *ActivityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.validate()
}

// StatusRequest is the HTTP request body for POST /presence/status.
type StatusRequest struct {
	subjectFields
	IsOnline bool `json:"isOnline"`
	// Broadcast defaults to true; callers doing bulk corrections can opt out.
	Broadcast *bool `json:"broadcast,omitempty"`
}

func (r *StatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.validate()
}

// ShouldBroadcast reports whether the status flip should be delivered live.
func (r *StatusRequest) ShouldBroadcast() bool {
	return r.Broadcast == nil || *r.Broadcast
}

// ConnectRequest is the HTTP request body for POST /presence/connections.
type ConnectRequest struct {
	subjectFields
	// ConnectionID is optional; one is minted when the caller has no stable
	// socket identifier of its own.
	ConnectionID string `json:"connectionId,omitempty"`
}

func (r *ConnectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ConnectionID = strings.TrimSpace(r.ConnectionID)
	if len(r.ConnectionID) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "connectionId must be at most 128 characters")
	}
	return r.validate()
}
