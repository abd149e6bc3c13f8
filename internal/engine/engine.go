// Package engine owns the process-scoped classification model. The CLI and the
// public facade open one Engine at startup and pass its classifier into every
// annotation run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/hejijunhao/annotate/internal/config"
	"github.com/hejijunhao/annotate/internal/engine/classifier"
	"github.com/hejijunhao/annotate/internal/engine/onnxmodel"
	"github.com/hejijunhao/annotate/internal/engine/remote"
	"github.com/hejijunhao/annotate/internal/engine/vision"
)

// ErrNoBackend is returned by Classifier when the engine was opened with the
// "none" backend.
var ErrNoBackend = errors.New("engine: no classification backend configured")

// Opener constructs a model for one backend.
type Opener func(ctx context.Context, cfg config.EngineConfig) (classifier.Model, error)

var registry = map[string]Opener{}

// Register adds a backend opener under the given name.
func Register(name string, open Opener) {
	registry[name] = open
}

// Backends returns the names of all registered backends, sorted.
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(config.BackendONNX, func(_ context.Context, cfg config.EngineConfig) (classifier.Model, error) {
		return onnxmodel.Open(cfg.ModelPath, cfg.LabelsPath, cfg.ORTLib)
	})
	Register(config.BackendVision, func(ctx context.Context, _ config.EngineConfig) (classifier.Model, error) {
		return vision.New(ctx)
	})
	Register(config.BackendHTTP, func(_ context.Context, cfg config.EngineConfig) (classifier.Model, error) {
		if cfg.Endpoint == "" {
			return nil, errors.New("http backend needs an endpoint")
		}
		return remote.New(cfg.Endpoint, cfg.APIKey, cfg.Timeout), nil
	})
}

// Engine holds the model for the lifetime of the process.
type Engine struct {
	backend string
	model   classifier.Model
	cpuOnly bool
}

// Open constructs the model for cfg.Backend. The "none" backend (or an empty
// name) yields an Engine without a model, which still serves fixed-label runs.
func Open(ctx context.Context, cfg config.EngineConfig) (*Engine, error) {
	e := &Engine{backend: cfg.Backend, cpuOnly: cfg.Device == "cpu"}
	if cfg.Backend == "" || cfg.Backend == config.BackendNone {
		e.backend = config.BackendNone
		return e, nil
	}

	open, ok := registry[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("engine: unknown backend %q (have %v)", cfg.Backend, Backends())
	}
	m, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", cfg.Backend, err)
	}
	e.model = m
	slog.Info("engine ready", "backend", cfg.Backend, "device", cfg.Device)
	return e, nil
}

// New wraps an already constructed model.
func New(m classifier.Model, cpuOnly bool) *Engine {
	return &Engine{backend: "custom", model: m, cpuOnly: cpuOnly}
}

// Backend returns the backend name the engine was opened with.
func (e *Engine) Backend() string { return e.backend }

// Model returns the model, or nil for the "none" backend.
func (e *Engine) Model() classifier.Model { return e.model }

// Classifier builds a batch classifier over the engine's model, honoring the
// configured device policy.
func (e *Engine) Classifier(opts ...classifier.Option) (*classifier.Classifier, error) {
	if e.model == nil {
		return nil, ErrNoBackend
	}
	if e.cpuOnly {
		opts = append(opts, classifier.WithCPUOnly())
	}
	return classifier.New(e.model, opts...), nil
}

// Close releases the model if it holds resources.
func (e *Engine) Close() error {
	if c, ok := e.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
