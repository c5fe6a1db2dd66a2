package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/r3fresh/alm-go/internal/event"
)

const requestTimeout = 10 * time.Second

// HTTP posts event batches to <endpoint>/v1/events as JSON.
type HTTP struct {
	queue
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTP creates a batched network sink. When apiKey is non-empty,
// batches carry a bearer authorization header.
func NewHTTP(endpoint, apiKey string, batchSize int) (*HTTP, error) {
	if endpoint == "" {
		return nil, errors.New("sink: endpoint is required for the HTTP sink")
	}
	return &HTTP{
		queue:    newQueue(batchSize),
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// Emit enqueues ev and flushes once the batch size is reached.
func (s *HTTP) Emit(ev event.Event) {
	if s.add(ev) {
		s.Flush()
	}
}

// Flush posts all queued events as one batch. Delivery failures are
// logged and swallowed; the queue is cleared either way.
func (s *HTTP) Flush() {
	queued := s.drain()
	if len(queued) == 0 {
		return
	}
	if err := s.post(queued); err != nil {
		clog.WarnContextf(context.Background(), "sink: failed to deliver %d events: %v", len(queued), err)
	}
}

func (s *HTTP) post(events []event.Event) error {
	body, err := json.Marshal(map[string]any{"events": events})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint+"/v1/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint rejected batch: HTTP %d", resp.StatusCode)
	}
	return nil
}

// Close flushes the queue and releases idle connections.
func (s *HTTP) Close() error {
	s.Flush()
	s.client.CloseIdleConnections()
	return nil
}
