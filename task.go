package alm

import (
	"context"
	"fmt"

	"github.com/r3fresh/alm-go/internal/event"
)

// Task executes fn inside a lightweight task scope nested in the
// current run. It emits task.start on entry and task.end on every exit
// path, updates the run's completed/failed counters, and propagates the
// body's error unchanged. Panics re-raise after telemetry is emitted.
//
// Tool calls made inside the task correlate with it only through the
// shared run identifier.
func (a *ALM) Task(ctx context.Context, taskType, description string, fn func(context.Context) error) (err error) {
	taskID := event.NewTaskID()
	a.emit(a.source.New(event.TaskStart, a.currentRunID(),
		event.TaskStartMeta(taskID, taskType, description)))

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
		a.endTask(taskID, cause)
		if rec != nil {
			panic(rec)
		}
	}()

	err = fn(ctx)
	return err
}

func (a *ALM) endTask(taskID string, cause error) {
	var errMeta map[string]any
	if cause != nil {
		errMeta = Normalize(cause, SourceAgent).Metadata()
	}
	a.emit(a.source.New(event.TaskEnd, a.currentRunID(),
		event.TaskEndMeta(taskID, cause == nil, errMeta)))

	if r := a.currentRun(); r != nil {
		if cause == nil {
			r.recordTaskCompleted()
		} else {
			r.recordTaskFailed()
		}
	}
}
