package annotate

import (
	"path/filepath"
	"time"

	"github.com/hejijunhao/annotate/internal/config"
)

type options struct {
	engine    config.EngineConfig
	model     Model
	batchSize int
	cleanText bool
}

// Option configures an Annotator.
type Option func(*options)

// WithModelDir selects the local ONNX backend with files from dir.
// Expects: classifier.onnx, labels.txt, libonnxruntime.so.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.engine.Backend = config.BackendONNX
		o.engine.ModelPath = filepath.Join(dir, "classifier.onnx")
		o.engine.LabelsPath = filepath.Join(dir, "labels.txt")
		o.engine.ORTLib = filepath.Join(dir, "libonnxruntime.so")
	}
}

// WithModelPaths selects the local ONNX backend with explicit file paths.
func WithModelPaths(model, labels, runtimeLib string) Option {
	return func(o *options) {
		o.engine.Backend = config.BackendONNX
		o.engine.ModelPath = model
		o.engine.LabelsPath = labels
		o.engine.ORTLib = runtimeLib
	}
}

// WithEndpoint selects a remote inference server exposing /classify/batch.
func WithEndpoint(url, apiKey string, timeout time.Duration) Option {
	return func(o *options) {
		o.engine.Backend = config.BackendHTTP
		o.engine.Endpoint = url
		o.engine.APIKey = apiKey
		o.engine.Timeout = timeout
	}
}

// WithCloudVision selects Google Cloud Vision label detection. Credentials
// come from the environment.
func WithCloudVision() Option {
	return func(o *options) {
		o.engine.Backend = config.BackendVision
	}
}

// WithModel uses m instead of a built-in backend.
func WithModel(m Model) Option {
	return func(o *options) {
		o.model = m
	}
}

// WithCPUOnly keeps the model off accelerated hardware.
func WithCPUOnly() Option {
	return func(o *options) {
		o.engine.Device = "cpu"
	}
}

// WithBatchSize sets how many images go to the model per call. Default: 8.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithCleanText toggles normalization (NFC, lower-case, trimmed) of text
// records. Default: true.
func WithCleanText(on bool) Option {
	return func(o *options) {
		o.cleanText = on
	}
}

func defaultOptions() options {
	return options{
		engine:    config.EngineConfig{Backend: config.BackendNone, Device: "auto"},
		batchSize: 8,
		cleanText: true,
	}
}
