package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chainguard-dev/clog"

	"github.com/r3fresh/alm-go/internal/event"
)

// Stdout writes events as line-delimited JSON to a console stream.
type Stdout struct {
	queue
	w io.Writer
}

// NewStdout creates a console sink. A nil writer defaults to os.Stdout.
func NewStdout(w io.Writer, batchSize int) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{queue: newQueue(batchSize), w: w}
}

// Emit enqueues ev and flushes once the batch size is reached.
func (s *Stdout) Emit(ev event.Event) {
	if s.add(ev) {
		s.Flush()
	}
}

// Flush writes all queued events, one JSON object per line.
func (s *Stdout) Flush() {
	for _, ev := range s.drain() {
		line, err := json.Marshal(ev)
		if err != nil {
			clog.WarnContextf(context.Background(), "sink: marshal event %s: %v", ev.EventID, err)
			continue
		}
		if _, err := fmt.Fprintf(s.w, "%s\n", line); err != nil {
			clog.WarnContextf(context.Background(), "sink: write event %s: %v", ev.EventID, err)
		}
	}
}

// Close flushes the queue. The writer is not owned by the sink.
func (s *Stdout) Close() error {
	s.Flush()
	return nil
}
