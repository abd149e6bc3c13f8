// Package output delivers run and evaluation reports to their destinations.
package output

import "context"

// Output defines the interface for report destinations.
type Output interface {
	Write(ctx context.Context, r Report) error
	Close() error
}
