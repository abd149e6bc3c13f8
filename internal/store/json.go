package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hejijunhao/annotate/internal/model"
)

// jsonFormat is a JSON array. On input each element may be a bare scalar or
// an object carrying "text" or "image" (or a single key of any name); on
// output every element is an object with the content key plus "labels".
type jsonFormat struct{}

func (jsonFormat) Name() string         { return "json" }
func (jsonFormat) Extensions() []string { return []string{".json"} }

type textEntry struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type imageEntry struct {
	Image  string   `json:"image"`
	Labels []string `json:"labels"`
}

func (jsonFormat) Decode(r io.Reader) ([]model.Record, error) {
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("json: %w: %v", ErrMalformed, err)
	}

	records := make([]model.Record, 0, len(items))
	for i, raw := range items {
		rec, err := decodeJSONItem(raw)
		if err != nil {
			return nil, fmt.Errorf("json: item %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeJSONItem(raw json.RawMessage) (model.Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return model.Record{}, fmt.Errorf("%w: null item", ErrMalformed)
	}
	if raw[0] != '{' {
		s, err := scalarString(raw)
		if err != nil {
			return model.Record{}, err
		}
		return model.NewText(s), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return model.Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	labels, err := decodeJSONLabels(obj)
	if err != nil {
		return model.Record{}, err
	}
	delete(obj, "labels")
	delete(obj, "label")

	var rec model.Record
	switch {
	case obj["image"] != nil:
		s, err := scalarString(obj["image"])
		if err != nil {
			return model.Record{}, err
		}
		rec = model.NewImage(s)
	case obj["text"] != nil:
		s, err := scalarString(obj["text"])
		if err != nil {
			return model.Record{}, err
		}
		rec = model.NewText(s)
	case len(obj) == 1:
		for _, v := range obj {
			s, err := scalarString(v)
			if err != nil {
				return model.Record{}, err
			}
			rec = model.NewText(s)
		}
	default:
		return model.Record{}, fmt.Errorf("%w: object has no text or image field", ErrMalformed)
	}
	rec.Labels = labels
	return rec, nil
}

// decodeJSONLabels accepts "labels" as an array or a ";"-joined string, and
// the singular "label" as a string.
func decodeJSONLabels(obj map[string]json.RawMessage) ([]string, error) {
	if raw, ok := obj["labels"]; ok {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, fmt.Errorf("%w: labels must be a list or string", ErrMalformed)
		}
		return splitLabels(joined, ";"), nil
	}
	if raw, ok := obj["label"]; ok {
		var one string
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: label must be a string", ErrMalformed)
		}
		return []string{one}, nil
	}
	return nil, nil
}

// scalarString renders a JSON string, number, or bool as text.
func scalarString(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool:
		return strings.TrimSpace(string(raw)), nil
	default:
		return "", fmt.Errorf("%w: expected a scalar, got %s", ErrMalformed, string(raw))
	}
}

func (jsonFormat) Encode(w io.Writer, records []model.Record) error {
	entries := make([]any, len(records))
	for i, r := range records {
		labels := r.Labels
		if labels == nil {
			labels = []string{}
		}
		if r.Kind == model.KindImage {
			entries[i] = imageEntry{Image: r.ContentRef, Labels: labels}
		} else {
			entries[i] = textEntry{Text: r.ContentRef, Labels: labels}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}
