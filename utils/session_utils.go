package utils

import "github.com/google/uuid"

// SessionCookieName is the cookie correlating ingest events from one
// browser. It is set by the load handler and required on every other
// event type.
const SessionCookieName = "ingest-session-id"

// NewSessionID mints the opaque identifier grouping one browser's events
// into a visit. Sessions are never stored server-side; the cookie is the
// only carrier.
func NewSessionID() string {
	return uuid.New().String()
}
