package annotate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hejijunhao/annotate/internal/engine"
	"github.com/hejijunhao/annotate/internal/engine/classifier"
	"github.com/hejijunhao/annotate/internal/eval"
	"github.com/hejijunhao/annotate/internal/pipeline"
	"github.com/hejijunhao/annotate/internal/store"
)

// Model classifies a batch of decoded images, one label per image in input
// order. Implementations may also implement DeviceBinder.
type Model = classifier.Model

// DeviceBinder is implemented by models that can run on accelerated hardware.
type DeviceBinder = classifier.DeviceBinder

// Errors callers can match with errors.Is.
var (
	ErrUnsupportedFormat = store.ErrUnsupportedFormat
	ErrNotADirectory     = store.ErrNotADirectory
	ErrMisaligned        = eval.ErrMisaligned
	ErrNoModel           = engine.ErrNoBackend
)

// Annotator runs annotation passes and evaluations.
// Safe for sequential reuse; runs on one Annotator should not overlap.
type Annotator struct {
	engine *engine.Engine
	ann    *pipeline.Annotator
}

// New creates an Annotator, loading the configured model if any. Loading a
// local model is expensive; create once, reuse across runs.
func New(opts ...Option) (*Annotator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var eng *engine.Engine
	if o.model != nil {
		eng = engine.New(o.model, o.engine.Device == "cpu")
	} else {
		var err error
		eng, err = engine.Open(context.Background(), o.engine)
		if err != nil {
			return nil, fmt.Errorf("annotate: %w", err)
		}
	}

	popts := []pipeline.Option{
		pipeline.WithBatchSize(o.batchSize),
		pipeline.WithCleanText(o.cleanText),
	}
	if cls, err := eng.Classifier(); err == nil {
		popts = append(popts, pipeline.WithClassifier(cls))
	}

	return &Annotator{engine: eng, ann: pipeline.New(popts...)}, nil
}

// AnnotateFile labels every text record in src with labels (["general"] when
// none are given) and writes them to dst. Formats follow file extensions:
// .json, .csv, .txt, .md.
func (a *Annotator) AnnotateFile(ctx context.Context, src, dst string, labels ...string) (Result, error) {
	run, err := a.ann.AnnotateFile(ctx, src, dst, labels)
	if err != nil {
		return Result{}, err
	}
	return resultFromRun(run), nil
}

// AnnotateImages labels the first limit images in dir (all when limit is 0)
// with labels (["unlabeled"] when none are given) and writes them to dst.
func (a *Annotator) AnnotateImages(ctx context.Context, dir, dst string, limit int, labels ...string) (Result, error) {
	run, err := a.ann.AnnotateImages(ctx, dir, dst, labels, limit)
	if err != nil {
		return Result{}, err
	}
	return resultFromRun(run), nil
}

// ClassifyImages labels each image from src with the model's answer. Images
// that cannot be read are labelled "unreadable". Returns ErrNoModel when the
// Annotator has no model. If ctx is cancelled between batches nothing is
// written and the partial Result is returned with the error.
func (a *Annotator) ClassifyImages(ctx context.Context, src, dst string, limit int) (Result, error) {
	run, err := a.ann.ClassifyImages(ctx, src, dst, limit)
	if errors.Is(err, pipeline.ErrNoClassifier) {
		return Result{}, ErrNoModel
	}
	if run == nil {
		return Result{}, err
	}
	return resultFromRun(run), err
}

// Evaluate scores predicted label sets against reference label sets, record
// by record.
func (a *Annotator) Evaluate(predPath, refPath string) (Scores, error) {
	rep, err := eval.EvaluateFiles(predPath, refPath)
	if err != nil {
		return Scores{}, err
	}
	return Scores(rep), nil
}

// ExactMatch scores predicted texts against reference texts, record by
// record, after trimming surrounding whitespace.
func (a *Annotator) ExactMatch(predPath, refPath string) (MatchScores, error) {
	rep, err := eval.ExactMatchFiles(predPath, refPath)
	if err != nil {
		return MatchScores{}, err
	}
	return MatchScores(rep), nil
}

// Close releases model resources.
func (a *Annotator) Close() error {
	return a.engine.Close()
}

func resultFromRun(run *pipeline.Run) Result {
	return Result{
		ID:         run.ID,
		Records:    len(run.Records),
		Batches:    run.Batches,
		Unreadable: run.Unreadable,
		Elapsed:    run.Elapsed,
		PerItem:    run.PerItem(),
	}
}
