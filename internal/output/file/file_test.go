package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hejijunhao/annotate/internal/eval"
	"github.com/hejijunhao/annotate/internal/output"
)

func testReport(correct int) output.Report {
	return output.FormatTextMatch(eval.MatchReport{Total: 10, Correct: correct, Accuracy: float64(correct) / 10}, "p.json", "r.json")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")
	out, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := out.Write(context.Background(), testReport(i)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		var r output.Report
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("line %d invalid JSON: %v", i, err)
		}
		if r.TextMatch == nil || r.TextMatch.Correct != i {
			t.Fatalf("line %d: unexpected report %+v", i, r)
		}
	}
}

func TestWriteIsVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")
	out, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	out.Write(context.Background(), testReport(1))
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("expected report flushed on write, got %d lines", len(lines))
	}
}

func TestAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")
	for i := 0; i < 2; i++ {
		out, err := New(path)
		if err != nil {
			t.Fatal(err)
		}
		out.Write(context.Background(), testReport(i))
		out.Close()
	}
	if lines := readLines(t, path); len(lines) != 2 {
		t.Fatalf("expected 2 lines after reopening, got %d", len(lines))
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.jsonl")
	out, err := New(path, WithMaxSize(100))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := out.Write(context.Background(), testReport(i)); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	out.Close()

	// Each report is longer than 100 bytes, so every write after the first rotates.
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("current log should hold 1 report, got %d", len(lines))
	}
	rotated := readLines(t, path+".1")
	if len(rotated) != 1 || !strings.Contains(rotated[0], `"correct":1`) {
		t.Fatalf("rotated log should hold the previous report, got %v", rotated)
	}
}

func TestNewBadPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "reports.jsonl")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
