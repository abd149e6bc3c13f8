package onnxmodel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	os.WriteFile(path, []byte("cat\n dog \n\nbird\n\n\n"), 0o644)

	got, err := loadLabels(path)
	if err != nil {
		t.Fatalf("loadLabels error: %v", err)
	}
	want := []string{"cat", "dog", "", "bird"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadLabelsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	os.WriteFile(path, []byte("\n\n"), 0o644)

	if _, err := loadLabels(path); err == nil {
		t.Fatal("expected error for empty labels file")
	}
}

func TestLoadLabelsMissing(t *testing.T) {
	if _, err := loadLabels(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
