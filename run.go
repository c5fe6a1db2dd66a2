package alm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/r3fresh/alm-go/internal/event"
)

// Run tracks one top-level supervised execution scope: its correlation
// identifier and the statistics accumulated by every tool call, task,
// and handoff nested within it.
type Run struct {
	id      string
	purpose string
	start   time.Time

	mu    sync.Mutex
	stats runStats
}

type runStats struct {
	toolCallsTotal   int
	toolCallsAllowed int
	toolCallsDenied  int
	toolCallsError   int
	toolCallsRetried int
	toolLatencies    []float64
	policyLatencies  []float64
	tasksCompleted   int
	tasksFailed      int
	handoffs         int
}

// Run executes fn inside a supervised run scope. Entry generates a run
// identifier, resets the policy budget, and emits run.start. Exit, on
// every path including panics, emits run.end with summary statistics
// and flushes the sink. The body's error is returned unchanged; panics
// re-raise after telemetry is emitted.
//
// Only one run may be active per instance; nested calls return
// ErrRunActive.
func (a *ALM) Run(ctx context.Context, purpose string, fn func(context.Context) error) (err error) {
	r, berr := a.beginRun(purpose)
	if berr != nil {
		return berr
	}

	defer func() {
		cause := err
		rec := recover()
		if rec != nil {
			cause = &StructuredError{
				Type:    "panic",
				Message: fmt.Sprint(rec),
				Source:  SourceAgent,
			}
		}
		a.endRun(r, cause)
		if rec != nil {
			panic(rec)
		}
	}()

	err = fn(ctx)
	return err
}

func (a *ALM) beginRun(purpose string) (*Run, error) {
	a.mu.Lock()
	if a.current != nil {
		a.mu.Unlock()
		return nil, ErrRunActive
	}
	r := &Run{
		id:      event.NewRunID(),
		purpose: purpose,
		start:   time.Now(),
	}
	a.current = r
	a.mu.Unlock()

	a.policy.ResetBudget()
	a.emit(a.source.New(event.RunStart, r.id, event.RunStartMeta(purpose)))
	return r, nil
}

func (a *ALM) endRun(r *Run, cause error) {
	var errMeta map[string]any
	if cause != nil {
		errMeta = Normalize(cause, SourceAgent).Metadata()
	}
	summary := r.summary(time.Since(r.start))
	a.emit(a.source.New(event.RunEnd, r.id, event.RunEndMeta(cause == nil, errMeta, summary)))

	a.mu.Lock()
	if a.current == r {
		a.current = nil
	}
	a.mu.Unlock()

	a.sink.Flush()
}

func (r *Run) summary(elapsed time.Duration) event.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return event.Summary{
		ToolCallsTotal:     r.stats.toolCallsTotal,
		ToolCallsAllowed:   r.stats.toolCallsAllowed,
		ToolCallsDenied:    r.stats.toolCallsDenied,
		ToolCallsError:     r.stats.toolCallsError,
		ToolCallsRetried:   r.stats.toolCallsRetried,
		AvgToolLatencyMS:   avg(r.stats.toolLatencies),
		AvgPolicyLatencyMS: avg(r.stats.policyLatencies),
		TotalRunDurationMS: float64(elapsed) / float64(time.Millisecond),
		TasksCompleted:     r.stats.tasksCompleted,
		TasksFailed:        r.stats.tasksFailed,
		Handoffs:           r.stats.handoffs,
	}
}

// toolCallRecord is one statistics update, applied atomically.
type toolCallRecord struct {
	allowed, denied, errored, retried bool
	toolLatencyMS, policyLatencyMS    float64
}

func (r *Run) recordToolCall(rec toolCallRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.toolCallsTotal++
	if rec.allowed {
		r.stats.toolCallsAllowed++
	}
	if rec.denied {
		r.stats.toolCallsDenied++
	}
	if rec.errored {
		r.stats.toolCallsError++
	}
	if rec.retried {
		r.stats.toolCallsRetried++
	}
	if rec.toolLatencyMS > 0 {
		r.stats.toolLatencies = append(r.stats.toolLatencies, rec.toolLatencyMS)
	}
	if rec.policyLatencyMS > 0 {
		r.stats.policyLatencies = append(r.stats.policyLatencies, rec.policyLatencyMS)
	}
}

func (r *Run) recordTaskCompleted() {
	r.mu.Lock()
	r.stats.tasksCompleted++
	r.mu.Unlock()
}

func (r *Run) recordTaskFailed() {
	r.mu.Lock()
	r.stats.tasksFailed++
	r.mu.Unlock()
}

func (r *Run) recordHandoff() {
	r.mu.Lock()
	r.stats.handoffs++
	r.mu.Unlock()
}

// recordToolCall applies a statistics update to the current run, or
// does nothing outside one.
func (a *ALM) recordToolCall(rec toolCallRecord) {
	if r := a.currentRun(); r != nil {
		r.recordToolCall(rec)
	}
}

func avg(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
