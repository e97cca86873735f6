package domain

import (
	"strings"

	dErrors "meeshy/pkg/domain-errors"
)

// SubjectKind discriminates the two presence-tracked populations. Registered
// accounts and anonymous session participants live in separate collections but
// share identical presence semantics, so the core dispatches on kind instead of
// duplicating code paths.
type SubjectKind string

const (
	KindRegistered SubjectKind = "registered"
	KindAnonymous  SubjectKind = "anonymous"
)

// Kinds lists all subject kinds, in sweep order.
var Kinds = []SubjectKind{KindRegistered, KindAnonymous}

// IsValid reports whether the kind is one of the supported populations.
func (k SubjectKind) IsValid() bool {
	return k == KindRegistered || k == KindAnonymous
}

// ParseSubjectKind constructs a SubjectKind from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseSubjectKind(s string) (SubjectKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind cannot be empty")
	}
	k := SubjectKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid subject kind")
	}
	return k, nil
}

// SubjectRef identifies one presence-tracked subject. The ID is opaque; the
// registration/session-join flows that mint it live outside this service.
type SubjectRef struct {
	ID   string
	Kind SubjectKind
}

// NewSubjectRef validates and builds a reference from external input.
func NewSubjectRef(id string, kind SubjectKind) (SubjectRef, error) {
	if strings.TrimSpace(id) == "" {
		return SubjectRef{}, dErrors.New(dErrors.CodeInvalidInput, "subject id cannot be empty")
	}
	if !kind.IsValid() {
		return SubjectRef{}, dErrors.New(dErrors.CodeInvalidInput, "invalid subject kind")
	}
	return SubjectRef{ID: id, Kind: kind}, nil
}

// IsAnonymous reports whether the subject is an anonymous session participant.
func (r SubjectRef) IsAnonymous() bool {
	return r.Kind == KindAnonymous
}

// Key returns the kind-namespaced cache key for the subject, e.g. "anon_42".
// Throttle and registry state is keyed by this value so a registered account
// and an anonymous participant with the same raw ID never collide.
func (r SubjectRef) Key() string {
	if r.Kind == KindAnonymous {
		return "anon_" + r.ID
	}
	return "user_" + r.ID
}
