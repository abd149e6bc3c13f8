package annotate

import "time"

// Result summarizes one annotation run.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Result struct {
	ID         string        `json:"id"`                   // Unique per run
	Records    int           `json:"records"`              // Records written
	Batches    int           `json:"batches,omitempty"`    // Model calls issued
	Unreadable int           `json:"unreadable,omitempty"` // Items labelled "unreadable"
	Elapsed    time.Duration `json:"elapsed"`
	PerItem    time.Duration `json:"per_item"`
}

// Scores are multi-label evaluation results. Accuracy is the share of records
// whose label set matches exactly; the rest are micro-averaged.
type Scores struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// MatchScores are single-label text-match results.
type MatchScores struct {
	Accuracy float64 `json:"accuracy"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
}
