package sink

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"

	"github.com/r3fresh/alm-go/internal/event"
)

// GenesisHash is the prev_hash for the first line in a new capture file.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// chainedEvent is one line in the capture file. All envelope fields are
// structs; metadata maps marshal with sorted keys, so the JSON line is
// deterministic and safe to hash.
type chainedEvent struct {
	event.Event
	PrevHash string `json:"prev_hash"`
}

// File is an append-only JSONL sink with SHA-256 hash chaining. Each
// line's prev_hash is the hash of the previous line, forming a
// tamper-evident chain of the telemetry capture.
type File struct {
	queue
	file     *os.File
	prevHash string
}

// NewFile opens (or creates) a capture file for appending. If the file
// already exists, the last line is read back to recover the chain tail.
func NewFile(path string, batchSize int) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("sink: create directory: %w", err)
	}

	prevHash := GenesisHash
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		lastLine, err := readLastLine(path)
		if err != nil {
			return nil, fmt.Errorf("sink: read existing capture: %w", err)
		}
		if len(lastLine) > 0 {
			prevHash = HashLine(lastLine)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("sink: open capture file: %w", err)
	}

	return &File{
		queue:    newQueue(batchSize),
		file:     file,
		prevHash: prevHash,
	}, nil
}

// Emit enqueues ev and flushes once the batch size is reached.
func (s *File) Emit(ev event.Event) {
	if s.add(ev) {
		s.Flush()
	}
}

// Flush appends all queued events to the capture file and syncs it.
// Write failures are logged and swallowed; the queue is cleared either
// way. The lock is held across drain and write so concurrent flushes
// cannot interleave their batches in the capture.
func (s *File) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	queued := s.events
	s.events = nil
	if len(queued) == 0 {
		return
	}

	for _, ev := range queued {
		line, err := json.Marshal(chainedEvent{Event: ev, PrevHash: s.prevHash})
		if err != nil {
			clog.WarnContextf(context.Background(), "sink: marshal event %s: %v", ev.EventID, err)
			continue
		}
		if _, err := s.file.Write(append(line, '\n')); err != nil {
			clog.WarnContextf(context.Background(), "sink: write event %s: %v", ev.EventID, err)
			continue
		}
		s.prevHash = HashLine(line)
	}

	if err := s.file.Sync(); err != nil {
		clog.WarnContextf(context.Background(), "sink: sync capture file: %v", err)
	}
}

// Close flushes the queue and closes the underlying file.
func (s *File) Close() error {
	s.Flush()
	return s.file.Close()
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}

func readLastLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var last []byte
	for scanner.Scan() {
		last = make([]byte, len(scanner.Bytes()))
		copy(last, scanner.Bytes())
	}
	return last, scanner.Err()
}
