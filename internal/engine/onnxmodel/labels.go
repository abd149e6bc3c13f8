package onnxmodel

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// loadLabels reads a class-names file where line i (0-indexed) names output
// class i. Blank lines are kept so indices stay aligned; trailing blank lines
// are dropped.
func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		names = append(names, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("labels: read error: %w", err)
	}
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("labels: file is empty: %s", path)
	}
	return names, nil
}
