package onnxmodel

import (
	"context"
	"image"
	"os"
	"testing"

	"github.com/hejijunhao/annotate/internal/engine/classifier"
)

const (
	testModelPath  = "../../../models/classifier.onnx"
	testLabelsPath = "../../../models/labels.txt"
	testLibPath    = "../../../models/libonnxruntime.so"
)

func skipIfNoModel(t *testing.T) {
	t.Helper()
	for _, p := range []string{testModelPath, testLabelsPath, testLibPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Skip("model files not found; run 'make download-model' first")
		}
	}
}

func TestOpenAndClassify(t *testing.T) {
	skipIfNoModel(t)

	m, err := Open(testModelPath, testLabelsPath, testLibPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.Close()

	imgs := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 64, 48)),
		image.NewRGBA(image.Rect(0, 0, 300, 300)),
	}
	labels, err := m.Classify(context.Background(), imgs)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	t.Logf("labels: %v", labels)
}

func TestBindIsIdempotent(t *testing.T) {
	skipIfNoModel(t)

	m, err := Open(testModelPath, testLabelsPath, testLibPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.Close()

	if err := m.Bind(classifier.DeviceCPU); err != nil {
		t.Fatalf("first Bind failed: %v", err)
	}
	first := m.session
	if err := m.Bind(classifier.DeviceAccelerator); err != nil {
		t.Fatalf("second Bind failed: %v", err)
	}
	if m.session != first || m.device != classifier.DeviceCPU {
		t.Fatal("second Bind should keep the existing session")
	}
}

func TestClassifyEmpty(t *testing.T) {
	m := &Model{}
	labels, err := m.Classify(context.Background(), nil)
	if err != nil || labels != nil {
		t.Fatalf("expected no-op for empty input, got %v, %v", labels, err)
	}
}

func TestCloseWithoutSession(t *testing.T) {
	if err := (&Model{}).Close(); err != nil {
		t.Fatalf("Close without session: %v", err)
	}
}
