// Package label attaches fixed label sets to records.
package label

import "github.com/hejijunhao/annotate/internal/model"

const (
	DefaultText  = "general"
	DefaultImage = "unlabeled"

	// Unreadable is the sentinel label for an item that could not be loaded
	// or classified.
	Unreadable = "unreadable"
)

// Defaults returns the label set used when none is supplied.
func Defaults(kind model.Kind) []string {
	if kind == model.KindImage {
		return []string{DefaultImage}
	}
	return []string{DefaultText}
}

// Assign sets every record's labels to a copy of labels. An empty label set
// falls back to Defaults for each record's kind. Calling it again with the
// same labels leaves records unchanged.
func Assign(records []model.Record, labels []string) {
	for i := range records {
		set := labels
		if len(set) == 0 {
			set = Defaults(records[i].Kind)
		}
		records[i].Labels = append([]string(nil), set...)
	}
}

// Fill sets labels from a classification result keyed by ContentRef. Records
// missing from results get the Unreadable sentinel. It returns how many
// records were marked unreadable.
func Fill(records []model.Record, results map[string]string) int {
	missing := 0
	for i := range records {
		lbl, ok := results[records[i].ContentRef]
		if !ok {
			lbl = Unreadable
			missing++
		}
		records[i].Labels = []string{lbl}
	}
	return missing
}
