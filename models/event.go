package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntryType enumerates the event kinds the tag script emits.
type EntryType string

const (
	EntryTypeLoad     EntryType = "load"
	EntryTypePageView EntryType = "pageView"
	EntryTypeError    EntryType = "error"
)

// ParseEntryType validates an event type taken from the request path.
// Anything outside the known set is rejected at the boundary so the
// entries stream never carries arbitrary type strings.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryTypeLoad, EntryTypePageView, EntryTypeError:
		return EntryType(s), nil
	default:
		return "", fmt.Errorf("unknown entry type %q", s)
	}
}

// Entry is one ingested event. Data is stored as-is; event payloads are
// schemaless so new client-side shapes never need a server change.
type Entry struct {
	EntryID   string          `json:"entryId"`
	ProjectID string          `json:"projectId"`
	EntryType EntryType       `json:"entryType"`
	SessionID *string         `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HourlyCount is one bucket of the gap-filled hourly series.
type HourlyCount struct {
	StartTime time.Time `json:"startTime"`
	Views     uint64    `json:"views"`
}

// KeyNumbers are the per-project headline figures on the dashboard.
type KeyNumbers struct {
	Visits               uint64  `json:"visits"`
	UniqueVisitors       uint64  `json:"uniqueVisitors"`
	AvgSessionDurationMs float64 `json:"avgSessionDurationMs"`
}
