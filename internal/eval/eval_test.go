package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hejijunhao/annotate/internal/model"
	"github.com/hejijunhao/annotate/internal/store"
)

func labeled(sets ...[]string) []model.Record {
	out := make([]model.Record, len(sets))
	for i, s := range sets {
		out[i] = model.NewText("item")
		out[i].Labels = s
	}
	return out
}

func TestEvaluateExactMatch(t *testing.T) {
	rep, err := Evaluate(labeled([]string{"a", "b"}), labeled([]string{"a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, Report{Accuracy: 1, Precision: 1, Recall: 1, F1: 1}, rep)
}

func TestEvaluateSubsetIsWrongButPartiallyCredited(t *testing.T) {
	rep, err := Evaluate(labeled([]string{"a"}), labeled([]string{"a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.Accuracy)
	assert.Equal(t, 1.0, rep.Precision)
	assert.Equal(t, 0.5, rep.Recall)
	assert.InDelta(t, 0.667, rep.F1, 0.001)
}

func TestEvaluateOrderAndDuplicatesIgnored(t *testing.T) {
	rep, err := Evaluate(
		labeled([]string{"b", "a", "a"}, []string{"x"}),
		labeled([]string{"a", "b"}, []string{"y"}),
	)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rep.Accuracy)
	// tp=2 (a,b), fp=1 (x), fn=1 (y)
	assert.InDelta(t, 2.0/3.0, rep.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, rep.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, rep.F1, 1e-9)
}

func TestEvaluateZeroDenominators(t *testing.T) {
	// No predicted positives and no reference positives: every record matches.
	rep, err := Evaluate(labeled(nil, []string{}), labeled([]string{}, nil))
	require.NoError(t, err)
	assert.Equal(t, Report{Accuracy: 1}, rep)

	// Nothing predicted: precision defaults to 0 instead of NaN.
	rep, err = Evaluate(labeled(nil), labeled([]string{"a"}))
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)
}

func TestEvaluateEmpty(t *testing.T) {
	rep, err := Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)
}

func TestEvaluateMisaligned(t *testing.T) {
	rep, err := Evaluate(labeled(nil, nil), labeled(nil, nil, nil))
	assert.ErrorIs(t, err, ErrMisaligned)
	assert.Equal(t, Report{}, rep)
}

func TestBuildVocabularyFirstSeenOrder(t *testing.T) {
	v := buildVocabulary(
		labeled([]string{"c", "a"}),
		labeled([]string{"b", "c"}),
	)
	assert.Equal(t, []string{"c", "a", "b"}, v.labels)
	assert.Equal(t, []bool{false, true, true}, binarize([]string{"b", "a"}, v))
}

func TestMatchText(t *testing.T) {
	assert.Equal(t, 1, MatchText("  Paris\n", "Paris"))
	assert.Equal(t, 0, MatchText("paris", "Paris"))
	assert.Equal(t, 1, MatchText("", "   "))
}

func TestExactMatch(t *testing.T) {
	pred := []model.Record{model.NewText("yes "), model.NewText("no"), model.NewText("maybe")}
	ref := []model.Record{model.NewText("yes"), model.NewText("no"), model.NewText("never")}

	rep, err := ExactMatch(pred, ref)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 2, rep.Correct)
	assert.InDelta(t, 2.0/3.0, rep.Accuracy, 1e-9)

	_, err = ExactMatch(pred[:1], ref)
	assert.ErrorIs(t, err, ErrMisaligned)

	rep, err = ExactMatch(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, MatchReport{}, rep)
}

func TestEvaluateFiles(t *testing.T) {
	dir := t.TempDir()
	pred := filepath.Join(dir, "pred.json")
	ref := filepath.Join(dir, "ref.csv")

	p := labeled([]string{"a"}, []string{"b"})
	r := labeled([]string{"a"}, []string{"c"})
	require.NoError(t, store.Write(p, pred))
	require.NoError(t, store.Write(r, ref))

	rep, err := EvaluateFiles(pred, ref)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rep.Accuracy)
	assert.Equal(t, 0.5, rep.Precision)
	assert.Equal(t, 0.5, rep.Recall)
}

func TestExactMatchFiles(t *testing.T) {
	dir := t.TempDir()
	pred := filepath.Join(dir, "pred.json")
	ref := filepath.Join(dir, "ref.json")
	require.NoError(t, os.WriteFile(pred, []byte(`[{"text":"Paris "},{"text":"Rome"}]`), 0o644))
	require.NoError(t, os.WriteFile(ref, []byte(`["Paris","Oslo"]`), 0o644))

	rep, err := ExactMatchFiles(pred, ref)
	require.NoError(t, err)
	assert.Equal(t, MatchReport{Accuracy: 0.5, Total: 2, Correct: 1}, rep)

	_, err = ExactMatchFiles(filepath.Join(dir, "missing.json"), ref)
	assert.Error(t, err)

	xml := filepath.Join(dir, "pred.xml")
	require.NoError(t, os.WriteFile(xml, []byte("<x/>"), 0o644))
	_, err = ExactMatchFiles(xml, ref)
	assert.ErrorIs(t, err, store.ErrUnsupportedFormat)
}
