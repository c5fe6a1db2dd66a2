package alm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type TimeoutError struct{ msg string }

func (e *TimeoutError) Error() string { return e.msg }

type quotaExhausted struct{ retryable bool }

func (e *quotaExhausted) Error() string   { return "quota exhausted" }
func (e *quotaExhausted) Retryable() bool { return e.retryable }

func TestNormalizeNil(t *testing.T) {
	if got := Normalize(nil, SourceTool); got != nil {
		t.Errorf("Normalize(nil) = %v, want nil", got)
	}
}

func TestNormalizePlainError(t *testing.T) {
	serr := Normalize(errors.New("disk full"), SourceTool)
	if serr.Type != "error" {
		t.Errorf("type is %q, want error", serr.Type)
	}
	if serr.Message != "disk full" {
		t.Errorf("message is %q", serr.Message)
	}
	if serr.Source != SourceTool {
		t.Errorf("source is %q, want tool", serr.Source)
	}
	if serr.Retryable {
		t.Error("plain error classified retryable")
	}
}

func TestNormalizeWrappedErrorCollapsesType(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New("inner"))
	serr := Normalize(err, SourceAgent)
	if serr.Type != "error" {
		t.Errorf("type is %q, want error", serr.Type)
	}
	if serr.Message != "outer: inner" {
		t.Errorf("message is %q", serr.Message)
	}
}

func TestNormalizeNamedTypeLabel(t *testing.T) {
	serr := Normalize(&TimeoutError{msg: "upstream gave up"}, SourceTool)
	if serr.Type != "TimeoutError" {
		t.Errorf("type is %q, want TimeoutError", serr.Type)
	}
	if !serr.Retryable {
		t.Error("TimeoutError not classified retryable")
	}
}

func TestNormalizeMessageHeuristic(t *testing.T) {
	serr := Normalize(errors.New("request Timeout after 5s"), SourceTool)
	if !serr.Retryable {
		t.Error("timeout message not classified retryable")
	}
	serr = Normalize(errors.New("bad request"), SourceTool)
	if serr.Retryable {
		t.Error("non-transient message classified retryable")
	}
}

func TestNormalizeRetryableCapabilityWins(t *testing.T) {
	// The explicit capability overrides the type-name set and the
	// message heuristic in both directions.
	serr := Normalize(&quotaExhausted{retryable: true}, SourceTool)
	if !serr.Retryable {
		t.Error("Retryable() true was ignored")
	}

	declined := &retryableOverride{msg: "connection timeout", retryable: false}
	serr = Normalize(declined, SourceTool)
	if serr.Retryable {
		t.Error("Retryable() false was overridden by the message heuristic")
	}
}

type retryableOverride struct {
	msg       string
	retryable bool
}

func (e *retryableOverride) Error() string   { return e.msg }
func (e *retryableOverride) Retryable() bool { return e.retryable }

func TestNormalizeDeadlineExceeded(t *testing.T) {
	serr := Normalize(fmt.Errorf("calling upstream: %w", context.DeadlineExceeded), SourceSystem)
	if !serr.Retryable {
		t.Error("context.DeadlineExceeded not classified retryable")
	}
}

func TestNormalizeStructuredPassthrough(t *testing.T) {
	orig := &StructuredError{
		Type:      "RateLimitError",
		Message:   "429 from provider",
		Code:      "429",
		Retryable: true,
		Details:   map[string]any{"retry_after": 30},
	}
	serr := Normalize(orig, SourceTool)
	if serr.Type != "RateLimitError" || serr.Code != "429" || !serr.Retryable {
		t.Errorf("structured fields not preserved: %+v", serr)
	}
	if serr.Source != SourceTool {
		t.Errorf("unset source not filled in, got %q", serr.Source)
	}

	// A source set by the producer is kept.
	orig.Source = SourcePolicy
	serr = Normalize(orig, SourceTool)
	if serr.Source != SourcePolicy {
		t.Errorf("producer source overwritten, got %q", serr.Source)
	}
}

func TestStructuredErrorMetadata(t *testing.T) {
	md := (&StructuredError{
		Type:      "ConnectionError",
		Message:   "reset by peer",
		Source:    SourceTool,
		Retryable: true,
	}).Metadata()
	if md["type"] != "ConnectionError" || md["message"] != "reset by peer" {
		t.Errorf("metadata is %v", md)
	}
	if md["source"] != "tool" || md["retryable"] != true {
		t.Errorf("metadata is %v", md)
	}
	if _, ok := md["code"]; ok {
		t.Error("empty code was emitted")
	}
	if _, ok := md["details"]; ok {
		t.Error("empty details were emitted")
	}
}

func TestDeniedErrorMessage(t *testing.T) {
	err := &DeniedError{Tool: "rm_rf", Reason: `tool "rm_rf" is in denied_tools list`}
	want := `alm: tool "rm_rf" denied: tool "rm_rf" is in denied_tools list`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
