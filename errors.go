package alm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
)

// ErrorSource identifies where a failure originated.
type ErrorSource string

const (
	SourceTool   ErrorSource = "tool"
	SourcePolicy ErrorSource = "policy"
	SourceAgent  ErrorSource = "agent"
	SourceSystem ErrorSource = "system"
)

// ErrRunActive is returned by Run when another run is already active on
// the same instance.
var ErrRunActive = errors.New("alm: a run is already active")

// StructuredError is the normalized failure record carried in
// telemetry. No raw failure crosses into an event without passing
// through Normalize.
type StructuredError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Code      string         `json:"code,omitempty"`
	Source    ErrorSource    `json:"source"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Metadata returns the event-embeddable projection of the error.
func (e *StructuredError) Metadata() map[string]any {
	md := map[string]any{
		"type":      e.Type,
		"message":   e.Message,
		"source":    string(e.Source),
		"retryable": e.Retryable,
	}
	if e.Code != "" {
		md["code"] = e.Code
	}
	if len(e.Details) > 0 {
		md["details"] = e.Details
	}
	return md
}

// DeniedError is returned to the caller when policy denies a tool call.
// The wrapped function never ran.
type DeniedError struct {
	Tool   string
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("alm: tool %q denied: %s", e.Tool, e.Reason)
}

// RetryableError lets error values declare retryability explicitly.
// Normalize consults this before falling back to type-name matching.
type RetryableError interface {
	error
	Retryable() bool
}

// retryableTypes are failure type labels treated as transient when the
// error value does not declare retryability itself.
var retryableTypes = map[string]struct{}{
	"ConnectionError":         {},
	"TimeoutError":            {},
	"TemporaryFailure":        {},
	"RateLimitError":          {},
	"ServiceUnavailableError": {},
}

// Normalize converts an arbitrary failure into a StructuredError tagged
// with the given source. An error that already is a StructuredError
// keeps its fields; its source is filled in only if unset. Returns nil
// for a nil error.
func Normalize(err error, source ErrorSource) *StructuredError {
	if err == nil {
		return nil
	}

	var serr *StructuredError
	if errors.As(err, &serr) {
		out := *serr
		if out.Source == "" {
			out.Source = source
		}
		return &out
	}

	label := errType(err)
	msg := err.Error()

	return &StructuredError{
		Type:      label,
		Message:   msg,
		Source:    source,
		Retryable: classifyRetryable(err, label, msg),
	}
}

// classifyRetryable prefers explicit signals (the RetryableError
// capability, net.Error timeouts, context deadline) over the type-label
// set and the "timeout" message heuristic.
func classifyRetryable(err error, label, msg string) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if _, ok := retryableTypes[label]; ok {
		return true
	}
	return strings.Contains(strings.ToLower(msg), "timeout")
}

// errType derives a type label from the dynamic error type. Opaque
// stdlib error wrappers collapse to "error".
func errType(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "error"
	}
	switch name := t.Name(); name {
	case "", "errorString", "wrapError", "wrapErrors", "joinError":
		return "error"
	default:
		return name
	}
}
