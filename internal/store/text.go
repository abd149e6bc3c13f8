package store

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hejijunhao/annotate/internal/model"
)

const (
	textLabelMarker = " | Labels: "
	textLabelSep    = ", "
	maxLineSize     = 1024 * 1024
)

// textFormat is one record per line. Lines written by Encode look like
// "<name> | Labels: a, b"; Decode splits that suffix back into labels and
// treats any other non-empty line as an unlabeled text record.
type textFormat struct{}

func (textFormat) Name() string         { return "text" }
func (textFormat) Extensions() []string { return []string{".txt", ".md"} }

func (textFormat) Decode(r io.Reader) ([]model.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []model.Record
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, labels := line, []string(nil)
		if i := strings.LastIndex(line, textLabelMarker); i >= 0 {
			name = strings.TrimSpace(line[:i])
			labels = splitLabels(line[i+len(textLabelMarker):], ",")
			if labels == nil {
				labels = []string{}
			}
		} else if strings.HasSuffix(line, strings.TrimRight(textLabelMarker, " ")) {
			// "name | Labels:" with an empty label list; the trailing space was trimmed.
			name = strings.TrimSpace(strings.TrimSuffix(line, strings.TrimRight(textLabelMarker, " ")))
			labels = []string{}
		}
		rec := model.NewText(name)
		rec.Labels = labels
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	return records, nil
}

func (textFormat) Encode(w io.Writer, records []model.Record) error {
	for i, r := range records {
		if strings.ContainsAny(r.DisplayName, "\r\n") {
			return fmt.Errorf("text: %w: record %d: name contains a line break", ErrMalformed, i)
		}
		for _, l := range r.Labels {
			if strings.ContainsAny(l, ",\r\n") || strings.Contains(l, strings.TrimSpace(textLabelMarker)) {
				return fmt.Errorf("text: %w: record %d: label %q cannot be written as plain text", ErrMalformed, i, l)
			}
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", r.DisplayName, textLabelMarker, strings.Join(r.Labels, textLabelSep)); err != nil {
			return fmt.Errorf("text: %w", err)
		}
	}
	return nil
}
