package store

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hejijunhao/annotate/internal/model"
)

// Format reads and writes a record sequence in one on-disk representation.
type Format interface {
	// Name is a short identifier ("json", "csv", "text").
	Name() string

	// Extensions lists the lower-case file extensions, with the leading dot,
	// this format is registered under.
	Extensions() []string

	// Decode parses a full container into records.
	Decode(r io.Reader) ([]model.Record, error)

	// Encode serializes records. Every record must already carry labels.
	Encode(w io.Writer, records []model.Record) error
}

var registry = map[string]Format{}

// Register adds a format under each of its extensions, replacing any
// format previously registered for the same extension.
func Register(f Format) {
	for _, ext := range f.Extensions() {
		registry[strings.ToLower(ext)] = f
	}
}

// ForPath returns the format registered for the path's extension.
// Unknown extensions fail with ErrUnsupportedFormat.
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := registry[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return nil, fmt.Errorf("store: %w: %s", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// Formats returns the registered extensions in sorted order.
func Formats() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func init() {
	Register(jsonFormat{})
	Register(csvFormat{})
	Register(textFormat{})
}
