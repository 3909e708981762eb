package loader

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// LoadLabels reads the name to label assignment from a JSON object file.
func LoadLabels(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer f.Close()

	labels, err := ReadLabels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return labels, nil
}

// ReadLabels decodes a JSON object mapping player name to label.
// Bijectivity is checked later by index.Build.
func ReadLabels(r io.Reader) (map[string]int, error) {
	var labels map[string]int
	if err := json.NewDecoder(r).Decode(&labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	return labels, nil
}
