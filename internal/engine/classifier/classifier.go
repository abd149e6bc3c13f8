package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
)

// ErrLabelCountMismatch is returned when a model answers a batch with a
// different number of labels than images it was given.
var ErrLabelCountMismatch = errors.New("label count does not match input count")

// Model is the classification collaborator: one label per image, in input order.
type Model interface {
	Classify(ctx context.Context, images []image.Image) ([]string, error)
}

// DeviceBinder is implemented by models that can run on accelerated hardware.
type DeviceBinder interface {
	AcceleratorAvailable() bool
	Bind(d Device) error
}

// Device is the compute target a model is bound to.
type Device int

const (
	DeviceCPU Device = iota
	DeviceAccelerator
)

func (d Device) String() string {
	if d == DeviceAccelerator {
		return "accelerator"
	}
	return "cpu"
}

// UnresolvedItemError reports an item whose content could not be loaded.
// It is recovered inside a batch, never returned from ClassifyBatch.
type UnresolvedItemError struct {
	Ref string
	Err error
}

func (e *UnresolvedItemError) Error() string {
	return fmt.Sprintf("unresolved item %s: %v", e.Ref, e.Err)
}

func (e *UnresolvedItemError) Unwrap() error { return e.Err }

// Option configures a Classifier.
type Option func(*Classifier)

// WithLoader replaces the function that resolves a content ref into an image.
// Default: LoadImage.
func WithLoader(l Loader) Option {
	return func(c *Classifier) { c.load = l }
}

// WithCPUOnly keeps the model on the fallback device even when an
// accelerator is available.
func WithCPUOnly() Option {
	return func(c *Classifier) { c.cpuOnly = true }
}

// WithOnUnresolved sets the callback invoked for each item that fails to load.
// Default: logs a warning via slog.
func WithOnUnresolved(f func(*UnresolvedItemError)) Option {
	return func(c *Classifier) { c.onUnresolved = f }
}

// Classifier submits batches of content refs to a Model. Items that fail to
// load are dropped from the batch instead of failing it.
type Classifier struct {
	model        Model
	load         Loader
	cpuOnly      bool
	onUnresolved func(*UnresolvedItemError)

	bindOnce sync.Once
	bindErr  error
	device   Device
}

// New creates a Classifier around a process-scoped model handle.
func New(m Model, opts ...Option) *Classifier {
	c := &Classifier{
		model: m,
		load:  LoadImage,
		onUnresolved: func(e *UnresolvedItemError) {
			slog.Warn("skipping unresolved item", "ref", e.Ref, "error", e.Err)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Device returns the device the model was bound to. It is DeviceCPU until
// the first non-empty batch, and for models that do not implement DeviceBinder.
func (c *Classifier) Device() Device {
	return c.device
}

// ClassifyBatch loads each ref, submits every loadable image to the model in
// one call, and maps refs to the returned labels. Refs that fail to load are
// absent from the result. An empty loadable set returns an empty map without
// calling the model. Model errors are returned as-is.
func (c *Classifier) ClassifyBatch(ctx context.Context, refs []string) (map[string]string, error) {
	images := make([]image.Image, 0, len(refs))
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		img, err := c.load(ref)
		if err != nil {
			c.onUnresolved(&UnresolvedItemError{Ref: ref, Err: err})
			continue
		}
		images = append(images, img)
		resolved = append(resolved, ref)
	}

	results := make(map[string]string, len(resolved))
	if len(images) == 0 {
		return results, nil
	}

	if err := c.bind(); err != nil {
		return nil, fmt.Errorf("classifier: bind device: %w", err)
	}

	labels, err := c.model.Classify(ctx, images)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(images) {
		return nil, fmt.Errorf("classifier: %w: %d labels for %d images",
			ErrLabelCountMismatch, len(labels), len(images))
	}

	for i, ref := range resolved {
		results[ref] = labels[i]
	}
	return results, nil
}

// bind selects the accelerator when the model offers one, falling back to
// the CPU. Only the first call does any work.
func (c *Classifier) bind() error {
	c.bindOnce.Do(func() {
		b, ok := c.model.(DeviceBinder)
		if !ok {
			return
		}

		d := DeviceCPU
		if !c.cpuOnly && b.AcceleratorAvailable() {
			d = DeviceAccelerator
		}
		err := b.Bind(d)
		if err != nil && d == DeviceAccelerator {
			slog.Warn("accelerator bind failed, falling back to cpu", "error", err)
			d = DeviceCPU
			err = b.Bind(d)
		}
		c.device = d
		c.bindErr = err
		if err == nil {
			slog.Info("model bound", "device", d.String())
		}
	})
	return c.bindErr
}
