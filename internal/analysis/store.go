package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Save writes a as indented JSON to path, replacing any previous content.
func Save(path string, a *Analysis) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFile
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Load reads an analysis previously written by Save and validates it.
func Load(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return Decode(string(data))
}
