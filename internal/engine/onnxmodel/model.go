// Package onnxmodel runs a local ONNX image classifier: an NCHW float input,
// a [batch, classes] logits output, and a class-names file mapping output
// indices to labels.
package onnxmodel

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/hejijunhao/annotate/internal/engine/classifier"
)

// Model is a classifier.Model and classifier.DeviceBinder backed by ONNX
// Runtime. The session is created on the first Bind, or on the first Classify
// if Bind was never called.
type Model struct {
	modelPath string
	info      modelInfo
	labels    []string

	mu      sync.Mutex
	session *onnxSession
	device  classifier.Device
}

// Open loads the runtime from libPath, validates the model graph, and reads
// the class names. No session exists yet.
func Open(modelPath, labelsPath, libPath string) (*Model, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnxmodel: failed to initialize runtime: %w", err)
	}

	info, err := inspectModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: %w", err)
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: %w", err)
	}
	if info.numClasses > 0 && int(info.numClasses) != len(labels) {
		return nil, fmt.Errorf("onnxmodel: model has %d classes but %s lists %d",
			info.numClasses, labelsPath, len(labels))
	}
	info.numClasses = int64(len(labels))

	slog.Info("onnx model loaded",
		"model", modelPath,
		"input", fmt.Sprintf("%dx%d", info.width, info.height),
		"classes", len(labels),
	)
	return &Model{modelPath: modelPath, info: info, labels: labels}, nil
}

// AcceleratorAvailable reports whether the runtime can use CUDA.
func (m *Model) AcceleratorAvailable() bool {
	return cudaAvailable()
}

// Bind creates the inference session on d. Once a session exists further
// calls are no-ops.
func (m *Model) Bind(d classifier.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bindLocked(d)
}

func (m *Model) bindLocked(d classifier.Device) error {
	if m.session != nil {
		return nil
	}
	sess, err := newONNXSession(m.modelPath, m.info, d == classifier.DeviceAccelerator)
	if err != nil {
		return fmt.Errorf("onnxmodel: %w", err)
	}
	m.session, m.device = sess, d
	slog.Info("onnx session ready", "device", d)
	return nil
}

// Labels returns the class names in output-index order.
func (m *Model) Labels() []string {
	return m.labels
}

// Classify runs one forward pass over images and returns the top class name
// for each.
func (m *Model) Classify(ctx context.Context, images []image.Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.bindLocked(classifier.DeviceCPU); err != nil {
		return nil, err
	}

	pixels := toTensor(images, m.info.width, m.info.height)
	logits, err := m.session.infer(pixels, int64(len(images)), m.info.numClasses)
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: %w", err)
	}

	idx := argmax(logits, len(images), int(m.info.numClasses))
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = m.labels[k]
	}
	return out, nil
}

// Close releases ONNX Runtime resources.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.close()
	m.session = nil
	return err
}
