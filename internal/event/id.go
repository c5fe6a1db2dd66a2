package event

import (
	"time"

	"github.com/google/uuid"
)

// Identifiers are opaque random tokens; the short prefix tells a human
// (and a downstream query) what kind of thing the token names.

// NewEventID generates a unique event identifier.
func NewEventID() string { return "ev-" + uuid.NewString() }

// NewRunID generates a unique run identifier.
func NewRunID() string { return "run-" + uuid.NewString() }

// NewCallID generates a tool-call identifier shared by all events
// (including retries) of one logical invocation.
func NewCallID() string { return "call-" + uuid.NewString() }

// NewTaskID generates a unique task identifier.
func NewTaskID() string { return "task-" + uuid.NewString() }

// timestampLayout is RFC3339 UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// UTCNowISO returns the current UTC time in RFC3339 format with
// millisecond precision and Z suffix.
func UTCNowISO() string {
	return time.Now().UTC().Format(timestampLayout)
}
