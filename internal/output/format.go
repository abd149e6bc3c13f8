package output

import (
	"time"

	"github.com/hejijunhao/annotate/internal/eval"
	"github.com/hejijunhao/annotate/internal/pipeline"
)

// Report kinds.
const (
	KindRun        = "run"
	KindEvaluation = "evaluation"
	KindTextMatch  = "text_match"
)

// Report is one JSON document describing a finished command. Exactly one of
// Run, Evaluation, or TextMatch is set, matching Kind.
type Report struct {
	Kind       string            `json:"kind"`
	Time       time.Time         `json:"time"`
	Run        *RunSummary       `json:"run,omitempty"`
	Evaluation *EvalSummary      `json:"evaluation,omitempty"`
	TextMatch  *TextMatchSummary `json:"text_match,omitempty"`
}

// RunSummary is the reportable part of a pipeline.Run.
type RunSummary struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Dest       string  `json:"dest"`
	Records    int     `json:"records"`
	Batches    int     `json:"batches,omitempty"`
	Unreadable int     `json:"unreadable,omitempty"`
	ElapsedMS  float64 `json:"elapsed_ms"`
	PerItemMS  float64 `json:"per_item_ms"`
}

// EvalSummary is a multi-label evaluation with its inputs.
type EvalSummary struct {
	Predicted string `json:"predicted"`
	Reference string `json:"reference"`
	eval.Report
}

// TextMatchSummary is a single-label text-match evaluation with its inputs.
type TextMatchSummary struct {
	Predicted string `json:"predicted"`
	Reference string `json:"reference"`
	eval.MatchReport
}

// FormatRun builds a run report.
func FormatRun(run *pipeline.Run, src, dst string) Report {
	return Report{
		Kind: KindRun,
		Time: time.Now().UTC(),
		Run: &RunSummary{
			ID:         run.ID,
			Source:     src,
			Dest:       dst,
			Records:    len(run.Records),
			Batches:    run.Batches,
			Unreadable: run.Unreadable,
			ElapsedMS:  millis(run.Elapsed),
			PerItemMS:  millis(run.PerItem()),
		},
	}
}

// FormatEvaluation builds a multi-label evaluation report.
func FormatEvaluation(rep eval.Report, pred, ref string) Report {
	return Report{
		Kind:       KindEvaluation,
		Time:       time.Now().UTC(),
		Evaluation: &EvalSummary{Predicted: pred, Reference: ref, Report: rep},
	}
}

// FormatTextMatch builds a text-match report.
func FormatTextMatch(rep eval.MatchReport, pred, ref string) Report {
	return Report{
		Kind:      KindTextMatch,
		Time:      time.Now().UTC(),
		TextMatch: &TextMatchSummary{Predicted: pred, Reference: ref, MatchReport: rep},
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
