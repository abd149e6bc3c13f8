// Package store normalizes annotation inputs into records and serializes
// annotated records back out. Formats are chosen by file extension through a
// registry; image sources are directories.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hejijunhao/annotate/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no format is registered for.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotADirectory is returned when an image source is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrMalformed is returned when a container cannot be parsed into records.
	ErrMalformed = errors.New("malformed input")
)

const writeBufSize = 64 * 1024

// imageExts are the file extensions ReadImages picks up, compared lower-case.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Read loads records from path. Directories are read as image sources; files
// are decoded by the format registered for their extension.
func Read(path string) ([]model.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if info.IsDir() {
		return ReadImages(path)
	}

	f, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer file.Close()

	records, err := f.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	return records, nil
}

// ReadImages lists the image files directly inside dir, in file-name order.
// Files with other extensions and subdirectories are skipped.
func ReadImages(dir string) ([]model.Record, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: %s: %w", dir, ErrNotADirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	var records []model.Record
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		records = append(records, model.NewImage(filepath.Join(dir, e.Name())))
	}
	return records, nil
}

// Write serializes records to path using the format registered for its
// extension, replacing any existing file. The format is resolved before the
// filesystem is touched, and the content goes through a temp file in the same
// directory that is renamed into place, so a failed write leaves the
// destination as it was.
func Write(records []model.Record, path string) error {
	f, err := ForPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	w := bufio.NewWriterSize(tmp, writeBufSize)
	if err := f.Encode(w, records); err != nil {
		cleanup()
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("store: flush %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
