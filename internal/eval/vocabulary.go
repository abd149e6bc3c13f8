package eval

import "github.com/hejijunhao/annotate/internal/model"

// vocabulary maps each distinct label to its column in the multi-hot encoding.
// Columns are assigned in first-seen order, predicted records first.
type vocabulary struct {
	index  map[string]int
	labels []string
}

func buildVocabulary(seqs ...[]model.Record) *vocabulary {
	v := &vocabulary{index: make(map[string]int)}
	for _, seq := range seqs {
		for _, r := range seq {
			for _, l := range r.Labels {
				if _, ok := v.index[l]; !ok {
					v.index[l] = len(v.labels)
					v.labels = append(v.labels, l)
				}
			}
		}
	}
	return v
}

// binarize encodes a label set as a multi-hot vector. Duplicates collapse.
func binarize(labels []string, v *vocabulary) []bool {
	vec := make([]bool, len(v.labels))
	for _, l := range labels {
		if i, ok := v.index[l]; ok {
			vec[i] = true
		}
	}
	return vec
}
