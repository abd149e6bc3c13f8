// Package eval scores predicted labels against reference labels.
package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hejijunhao/annotate/internal/model"
	"github.com/hejijunhao/annotate/internal/store"
)

// ErrMisaligned is returned when the predicted and reference sequences have
// different lengths.
var ErrMisaligned = errors.New("predicted and reference lengths differ")

// Report holds multi-label scores. Accuracy counts records whose label set
// matches the reference exactly; the other three are micro-averaged over
// every (record, label) decision.
type Report struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// MatchReport holds single-label text-match scores.
type MatchReport struct {
	Accuracy float64 `json:"accuracy"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
}

// Evaluate compares predicted[i] with reference[i] as label sets.
func Evaluate(predicted, reference []model.Record) (Report, error) {
	if len(predicted) != len(reference) {
		return Report{}, fmt.Errorf("eval: %w: %d vs %d", ErrMisaligned, len(predicted), len(reference))
	}
	if len(predicted) == 0 {
		return Report{}, nil
	}

	vocab := buildVocabulary(predicted, reference)

	var exact, tp, fp, fn int
	for i := range predicted {
		p := binarize(predicted[i].Labels, vocab)
		r := binarize(reference[i].Labels, vocab)

		same := true
		for j := range p {
			switch {
			case p[j] && r[j]:
				tp++
			case p[j]:
				fp++
				same = false
			case r[j]:
				fn++
				same = false
			}
		}
		if same {
			exact++
		}
	}

	precision := ratio(tp, tp+fp)
	recall := ratio(tp, tp+fn)
	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return Report{
		Accuracy:  float64(exact) / float64(len(predicted)),
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}, nil
}

// MatchText reports whether two texts are equal after trimming surrounding
// whitespace: 1 if so, else 0.
func MatchText(predicted, reference string) int {
	if strings.TrimSpace(predicted) == strings.TrimSpace(reference) {
		return 1
	}
	return 0
}

// ExactMatch scores each predicted record's content against the reference
// record at the same position with MatchText.
func ExactMatch(predicted, reference []model.Record) (MatchReport, error) {
	if len(predicted) != len(reference) {
		return MatchReport{}, fmt.Errorf("eval: %w: %d vs %d", ErrMisaligned, len(predicted), len(reference))
	}
	rep := MatchReport{Total: len(predicted)}
	for i := range predicted {
		rep.Correct += MatchText(predicted[i].ContentRef, reference[i].ContentRef)
	}
	if rep.Total > 0 {
		rep.Accuracy = float64(rep.Correct) / float64(rep.Total)
	}
	return rep, nil
}

// EvaluateFiles reads both files through the record store and calls Evaluate.
func EvaluateFiles(predPath, refPath string) (Report, error) {
	pred, ref, err := readPair(predPath, refPath)
	if err != nil {
		return Report{}, err
	}
	return Evaluate(pred, ref)
}

// ExactMatchFiles reads both files through the record store and calls ExactMatch.
func ExactMatchFiles(predPath, refPath string) (MatchReport, error) {
	pred, ref, err := readPair(predPath, refPath)
	if err != nil {
		return MatchReport{}, err
	}
	return ExactMatch(pred, ref)
}

func readPair(predPath, refPath string) ([]model.Record, []model.Record, error) {
	pred, err := store.Read(predPath)
	if err != nil {
		return nil, nil, fmt.Errorf("eval: predicted: %w", err)
	}
	ref, err := store.Read(refPath)
	if err != nil {
		return nil, nil, fmt.Errorf("eval: reference: %w", err)
	}
	return pred, ref, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
