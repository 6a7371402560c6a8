package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	subjectKey contextKey = "subject"
)

// subjectSlot is shared by every request derived from the one that created
// it, so middleware wrapping Auth can read the subject once the request is done
type subjectSlot struct {
	subject string
}

// WithSubjectSlot installs an empty subject slot for inner middleware to fill
func WithSubjectSlot(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), subjectKey, &subjectSlot{}))
}

// WithSubject adds the authenticated token subject to the request context,
// filling an existing slot when one was installed
func WithSubject(r *http.Request, subject string) *http.Request {
	if slot, ok := r.Context().Value(subjectKey).(*subjectSlot); ok {
		slot.subject = subject
		return r
	}
	ctx := context.WithValue(r.Context(), subjectKey, &subjectSlot{subject: subject})
	return r.WithContext(ctx)
}

// GetSubject retrieves the token subject from context, returns empty string
// when the request was not authenticated
func GetSubject(r *http.Request) string {
	slot, ok := r.Context().Value(subjectKey).(*subjectSlot)
	if !ok {
		return ""
	}
	return slot.subject
}
