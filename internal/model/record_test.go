package model

import (
	"path/filepath"
	"testing"
)

func TestNewImageDisplayName(t *testing.T) {
	r := NewImage(filepath.Join("data", "images", "sample_1.png"))
	if r.DisplayName != "sample_1.png" {
		t.Fatalf("DisplayName = %q, want sample_1.png", r.DisplayName)
	}
	if r.Kind != KindImage {
		t.Fatalf("Kind = %v, want image", r.Kind)
	}
	if r.Labels != nil {
		t.Fatal("new record should have nil labels")
	}
}

func TestNewTextUsesTextAsName(t *testing.T) {
	r := NewText("hello world")
	if r.DisplayName != "hello world" || r.ContentRef != "hello world" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Kind.String() != "text" {
		t.Fatalf("Kind.String() = %q, want text", r.Kind.String())
	}
}

func TestRefs(t *testing.T) {
	recs := []Record{NewText("a"), NewImage("/x/b.png")}
	refs := Refs(recs)
	if len(refs) != 2 || refs[0] != "a" || refs[1] != "/x/b.png" {
		t.Fatalf("Refs = %v", refs)
	}
}
