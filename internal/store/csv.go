package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hejijunhao/annotate/internal/model"
)

const csvLabelSep = ";"

// csvFormat is a header row of "text,labels" or "image,labels" followed by one
// row per record, labels joined with ";".
type csvFormat struct{}

func (csvFormat) Name() string         { return "csv" }
func (csvFormat) Extensions() []string { return []string{".csv"} }

func (csvFormat) Decode(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %w: %v", ErrMalformed, err)
	}

	contentCol, labelsCol := -1, -1
	kind := model.KindText
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			contentCol = i
		case "image":
			contentCol = i
			kind = model.KindImage
		case "labels":
			labelsCol = i
		}
	}
	if contentCol < 0 {
		return nil, fmt.Errorf("csv: %w: header has no text or image column", ErrMalformed)
	}

	var records []model.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w: %v", ErrMalformed, err)
		}
		if contentCol >= len(row) {
			return nil, fmt.Errorf("csv: %w: line %d has no content cell", ErrMalformed, line)
		}

		var rec model.Record
		if kind == model.KindImage {
			rec = model.NewImage(row[contentCol])
		} else {
			rec = model.NewText(row[contentCol])
		}
		if labelsCol >= 0 && labelsCol < len(row) {
			rec.Labels = splitLabels(row[labelsCol], csvLabelSep)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (csvFormat) Encode(w io.Writer, records []model.Record) error {
	// The header names one content column, so every record must share a kind.
	kind := model.KindText
	if len(records) > 0 {
		kind = records[0].Kind
	}
	for i, r := range records {
		if r.Kind != kind {
			return fmt.Errorf("csv: %w: record %d is %s, expected %s", ErrMalformed, i, r.Kind, kind)
		}
		for _, l := range r.Labels {
			if strings.Contains(l, csvLabelSep) {
				return fmt.Errorf("csv: %w: record %d: label %q contains %q", ErrMalformed, i, l, csvLabelSep)
			}
		}
	}
	contentKey := kind.String()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{contentKey, "labels"}); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ContentRef, strings.Join(r.Labels, csvLabelSep)}); err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}

// splitLabels splits a joined label cell, trimming entries and dropping empties.
func splitLabels(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}
