package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/r3fresh/alm-go/internal/event"
	"github.com/r3fresh/alm-go/internal/sink"
)

func writeCapture(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	s, err := sink.NewFile(path, 10)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	src := event.Source{AgentID: "cli-test", Env: "test"}
	for i := 0; i < n; i++ {
		s.Emit(src.New(event.ToolRequest, "run-1", map[string]any{"n": i}))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestRunVerify_ValidChain(t *testing.T) {
	path := writeCapture(t, 3)

	var out bytes.Buffer
	result, err := runVerify(path, &out)
	if err != nil {
		t.Fatalf("runVerify failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid chain: %+v", result)
	}
	if result.Lines != 3 {
		t.Errorf("verified %d lines, want 3", result.Lines)
	}
	if !strings.Contains(out.String(), `"valid": true`) {
		t.Errorf("output missing valid flag: %s", out.String())
	}
}

func TestRunVerify_TamperedChain(t *testing.T) {
	path := writeCapture(t, 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := bytes.Replace(data, []byte(`"cli-test"`), []byte(`"intruder"`), 1)
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	result, err := runVerify(path, &out)
	if err != nil {
		t.Fatalf("runVerify failed: %v", err)
	}
	if result.Valid {
		t.Error("tampered capture verified as valid")
	}
	if result.ErrorLine != 2 {
		t.Errorf("break detected at line %d, want 2", result.ErrorLine)
	}
}

func TestRunVerify_MissingFile(t *testing.T) {
	var out bytes.Buffer
	result, err := runVerify(filepath.Join(t.TempDir(), "absent.jsonl"), &out)
	if err != nil {
		t.Fatalf("runVerify failed: %v", err)
	}
	if result.Valid {
		t.Error("missing file verified as valid")
	}
}
