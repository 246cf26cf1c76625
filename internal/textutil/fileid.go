package textutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileID returns the dot-delimited token at position in the base name of
// path. "srf.2020-03-12.srt" has id "2020-03-12" at position 1.
func FileID(path string, position int) (string, error) {
	name := filepath.Base(path)
	parts := strings.Split(name, ".")
	if position < 0 || position >= len(parts) {
		return "", fmt.Errorf("file name %q has no id token at position %d", name, position)
	}
	id := strings.TrimSpace(parts[position])
	if id == "" {
		return "", fmt.Errorf("file name %q has an empty id token at position %d", name, position)
	}
	return id, nil
}
