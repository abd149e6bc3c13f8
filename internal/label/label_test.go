package label

import (
	"reflect"
	"testing"

	"github.com/hejijunhao/annotate/internal/model"
)

func TestAssignFixedLabels(t *testing.T) {
	recs := []model.Record{model.NewText("a"), model.NewImage("b.png")}
	Assign(recs, []string{"general", "technical"})

	for i, r := range recs {
		if !reflect.DeepEqual(r.Labels, []string{"general", "technical"}) {
			t.Errorf("record %d labels = %v", i, r.Labels)
		}
	}
}

func TestAssignDefaults(t *testing.T) {
	recs := []model.Record{model.NewText("a"), model.NewImage("b.png")}
	Assign(recs, nil)

	if !reflect.DeepEqual(recs[0].Labels, []string{"general"}) {
		t.Errorf("text default = %v, want [general]", recs[0].Labels)
	}
	if !reflect.DeepEqual(recs[1].Labels, []string{"unlabeled"}) {
		t.Errorf("image default = %v, want [unlabeled]", recs[1].Labels)
	}
}

func TestAssignIdempotent(t *testing.T) {
	once := []model.Record{model.NewText("a"), model.NewText("b")}
	twice := []model.Record{model.NewText("a"), model.NewText("b")}
	labels := []string{"x", "y"}

	Assign(once, labels)
	Assign(twice, labels)
	Assign(twice, labels)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("assigning twice changed state:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestAssignCopiesLabels(t *testing.T) {
	recs := []model.Record{model.NewText("a"), model.NewText("b")}
	labels := []string{"x"}
	Assign(recs, labels)

	labels[0] = "mutated"
	recs[0].Labels[0] = "changed"
	if recs[1].Labels[0] != "x" {
		t.Fatalf("records share a label slice: %v", recs[1].Labels)
	}
}

func TestFillMarksMissingUnreadable(t *testing.T) {
	recs := []model.Record{model.NewImage("a.png"), model.NewImage("b.png"), model.NewImage("c.png")}
	n := Fill(recs, map[string]string{"a.png": "cat", "c.png": "dog"})

	if n != 1 {
		t.Fatalf("Fill returned %d unreadable, want 1", n)
	}
	want := [][]string{{"cat"}, {"unreadable"}, {"dog"}}
	for i, r := range recs {
		if !reflect.DeepEqual(r.Labels, want[i]) {
			t.Errorf("record %d labels = %v, want %v", i, r.Labels, want[i])
		}
	}
}
