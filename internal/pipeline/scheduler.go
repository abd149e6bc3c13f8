package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

// DefaultBatchSize is used when a non-positive batch size is requested.
const DefaultBatchSize = 8

// BatchClassifier labels one batch of content refs. Refs it could not load
// are absent from the returned map.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, refs []string) (map[string]string, error)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithYield replaces the suspension point run before each batch. The
// function returns a non-nil error to stop the run. Default: runtime.Gosched
// followed by a context check.
func WithYield(f func(ctx context.Context) error) SchedulerOption {
	return func(s *Scheduler) { s.yield = f }
}

// Scheduler drives a BatchClassifier over a sequence of refs one batch at a
// time. Batches never overlap: each starts only after the previous batch's
// labels are merged. Between batches the scheduler yields so other goroutines
// can run, and that is the only place cancellation is observed.
type Scheduler struct {
	cls   BatchClassifier
	yield func(ctx context.Context) error
}

// NewScheduler creates a Scheduler around cls.
func NewScheduler(cls BatchClassifier, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{cls: cls, yield: cooperativeYield}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessAll splits refs into consecutive batches of batchSize (the last may
// be shorter) and merges each batch's labels into one map.
//
// If the context is cancelled, or the yield function fails, ProcessAll stops
// at the next batch boundary and returns the labels gathered so far together
// with the error. The batch running when ctx is cancelled gets a context that
// is never cancelled, so its labels are kept. A classifier error stops the run the same way; it is never
// retried here.
func (s *Scheduler) ProcessAll(ctx context.Context, refs []string, batchSize int) (map[string]string, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// A batch in flight runs to completion; cancellation is seen by the
	// yield only.
	batchCtx := context.WithoutCancel(ctx)

	results := make(map[string]string, len(refs))
	for start, idx := 0, 0; start < len(refs); start, idx = start+batchSize, idx+1 {
		if err := s.yield(ctx); err != nil {
			return results, err
		}

		end := min(start+batchSize, len(refs))
		batch := refs[start:end]

		slog.Debug("batch start", "batch", idx, "size", len(batch))
		labels, err := s.cls.ClassifyBatch(batchCtx, batch)
		if err != nil {
			return results, fmt.Errorf("pipeline: batch %d: %w", idx, err)
		}
		for ref, lbl := range labels {
			results[ref] = lbl
		}
		slog.Debug("batch done", "batch", idx, "labeled", len(labels))
	}
	return results, nil
}

// BatchCount returns how many batches ProcessAll issues for n refs.
func BatchCount(n, batchSize int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return (n + batchSize - 1) / batchSize
}

func cooperativeYield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}
