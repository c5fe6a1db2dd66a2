// Package sink implements transport-agnostic batched event emitters.
//
// Sinks queue events and deliver them in batches. Delivery failures are
// logged and swallowed: telemetry must never crash the host agent.
package sink

import (
	"sync"

	"github.com/r3fresh/alm-go/internal/event"
)

// DefaultBatchSize is the queue length that triggers an automatic flush.
const DefaultBatchSize = 50

// Sink accepts telemetry events for delivery.
type Sink interface {
	// Emit enqueues an event. Delivery is not synchronous; the queue is
	// flushed automatically once the batch size is reached.
	Emit(event.Event)
	// Flush synchronously delivers all queued events. The queue is
	// cleared regardless of delivery outcome.
	Flush()
	// Close flushes and releases transport resources.
	Close() error
}

// queue is the mutex-guarded buffer shared by all sink implementations.
type queue struct {
	mu        sync.Mutex
	events    []event.Event
	batchSize int
}

func newQueue(batchSize int) queue {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return queue{batchSize: batchSize}
}

// add enqueues one event and reports whether the batch size was reached.
func (q *queue) add(ev event.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
	return len(q.events) >= q.batchSize
}

// drain empties the queue and returns what was in it.
func (q *queue) drain() []event.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.events
	q.events = nil
	return drained
}
