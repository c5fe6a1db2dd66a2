package alm

import (
	"sync"
	"testing"

	"github.com/r3fresh/alm-go/internal/event"
)

// memSink captures emitted events for assertions.
type memSink struct {
	mu      sync.Mutex
	events  []event.Event
	flushes int
}

func (m *memSink) Emit(ev event.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

func (m *memSink) Flush() {
	m.mu.Lock()
	m.flushes++
	m.mu.Unlock()
}

func (m *memSink) Close() error { return nil }

func (m *memSink) all() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *memSink) byType(t event.Type) []event.Event {
	var out []event.Event
	for _, ev := range m.all() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestALM(t *testing.T, opts ...Option) (*ALM, *memSink) {
	t.Helper()
	ms := &memSink{}
	a, err := New("test-agent", append([]Option{WithSink(ms)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, ms
}

// metaInt reads an integer metadata field regardless of numeric type.
func metaInt(t *testing.T, md map[string]any, key string) int {
	t.Helper()
	switch v := md[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		t.Fatalf("metadata %q is %T, want a number", key, md[key])
		return 0
	}
}
