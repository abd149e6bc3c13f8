package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hejijunhao/annotate/internal/label"
	"github.com/hejijunhao/annotate/internal/model"
	"github.com/hejijunhao/annotate/internal/store"
	"github.com/hejijunhao/annotate/internal/textclean"
)

// ErrNoClassifier is returned by ClassifyImages when the Annotator was built
// without a classifier.
var ErrNoClassifier = errors.New("no classifier configured")

// Option configures an Annotator.
type Option func(*Annotator)

// WithClassifier enables model-driven labelling through ClassifyImages.
func WithClassifier(cls BatchClassifier, opts ...SchedulerOption) Option {
	return func(a *Annotator) { a.sched = NewScheduler(cls, opts...) }
}

// WithBatchSize sets how many items go to the classifier per call. Default: 8.
func WithBatchSize(n int) Option {
	return func(a *Annotator) { a.batchSize = n }
}

// WithCleanText toggles text normalization of text records before labelling.
// Default: true.
func WithCleanText(on bool) Option {
	return func(a *Annotator) { a.cleanText = on }
}

// Run describes one annotation pass.
type Run struct {
	ID         string
	Records    []model.Record
	Batches    int
	Unreadable int
	Elapsed    time.Duration

	started time.Time
}

// PerItem returns the mean wall time per record.
func (r *Run) PerItem() time.Duration {
	if len(r.Records) == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(len(r.Records))
}

// Annotator reads records from a store, labels them, and writes them back out.
type Annotator struct {
	sched     *Scheduler
	batchSize int
	cleanText bool
}

// New creates an Annotator. Without WithClassifier only fixed-label
// annotation is available.
func New(opts ...Option) *Annotator {
	a := &Annotator{batchSize: DefaultBatchSize, cleanText: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnnotateFile reads text records from src, assigns labels (defaults when
// empty), and writes them to dst.
func (a *Annotator) AnnotateFile(ctx context.Context, src, dst string, labels []string) (*Run, error) {
	run := a.start()
	if _, err := store.ForPath(dst); err != nil {
		return nil, err
	}

	recs, err := store.Read(src)
	if err != nil {
		return nil, err
	}
	if a.cleanText {
		for i := range recs {
			if recs[i].Kind == model.KindText {
				cleaned := textclean.Clean(recs[i].ContentRef)
				recs[i].ContentRef, recs[i].DisplayName = cleaned, cleaned
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	label.Assign(recs, labels)
	run.Records = recs
	return a.finish(run, dst)
}

// AnnotateImages lists image files in dir (the first limit of them when
// limit > 0), assigns the same labels to each, and writes them to dst.
func (a *Annotator) AnnotateImages(ctx context.Context, dir, dst string, labels []string, limit int) (*Run, error) {
	run := a.start()
	if _, err := store.ForPath(dst); err != nil {
		return nil, err
	}

	recs, err := store.ReadImages(dir)
	if err != nil {
		return nil, err
	}
	recs = truncate(recs, limit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	label.Assign(recs, labels)
	run.Records = recs
	return a.finish(run, dst)
}

// ClassifyImages labels each image from src (an image directory, or a record
// file listing image paths) with the classifier's answer, batch by batch.
// Images that cannot be loaded are labelled "unreadable" and the run goes on.
//
// If the run stops early (cancellation or a model error), records classified
// so far keep their labels, the rest stay unlabeled, nothing is written, and
// the partial Run is returned with the error.
func (a *Annotator) ClassifyImages(ctx context.Context, src, dst string, limit int) (*Run, error) {
	if a.sched == nil {
		return nil, ErrNoClassifier
	}
	run := a.start()
	if _, err := store.ForPath(dst); err != nil {
		return nil, err
	}

	recs, err := store.Read(src)
	if err != nil {
		return nil, err
	}
	recs = truncate(recs, limit)
	run.Records = recs

	results, err := a.sched.ProcessAll(ctx, model.Refs(recs), a.batchSize)
	if err != nil {
		for i := range recs {
			if lbl, ok := results[recs[i].ContentRef]; ok {
				recs[i].Labels = []string{lbl}
			}
		}
		run.Elapsed = time.Since(run.started)
		slog.Warn("classification stopped early", "run_id", run.ID, "labeled", len(results), "records", len(recs), "error", err)
		return run, err
	}

	run.Batches = BatchCount(len(recs), a.batchSize)
	run.Unreadable = label.Fill(recs, results)
	return a.finish(run, dst)
}

func (a *Annotator) start() *Run {
	return &Run{ID: uuid.NewString(), started: time.Now()}
}

// finish writes the run's records and stamps the elapsed time.
func (a *Annotator) finish(run *Run, dst string) (*Run, error) {
	if err := store.Write(run.Records, dst); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	run.Elapsed = time.Since(run.started)
	slog.Info("annotation run complete",
		"run_id", run.ID,
		"records", len(run.Records),
		"batches", run.Batches,
		"unreadable", run.Unreadable,
		"elapsed", run.Elapsed,
		"dst", dst,
	)
	return run, nil
}

func truncate(recs []model.Record, limit int) []model.Record {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
