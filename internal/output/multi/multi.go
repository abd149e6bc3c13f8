// Package multi sends each report to several destinations, typically stdout
// plus the report log.
package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/hejijunhao/annotate/internal/output"
)

// Multi is an output.Output over an ordered list of destinations.
type Multi struct {
	outputs []output.Output
}

// New keeps the non-nil outputs in order, so optional destinations can be
// passed unconditionally.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len returns the number of destinations.
func (m *Multi) Len() int { return len(m.outputs) }

// Write tries every destination in order. A failing destination does not
// stop the rest; failures come back joined, each tagged with its position.
func (m *Multi) Write(ctx context.Context, r output.Report) error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Write(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes destinations in reverse order.
func (m *Multi) Close() error {
	var errs []error
	for i := len(m.outputs) - 1; i >= 0; i-- {
		if err := m.outputs[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
