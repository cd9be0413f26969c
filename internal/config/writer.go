package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/moolen/upgradelens/internal/patterns"
)

// WritePatternsFile atomically writes spec to path as YAML. The data goes to
// a temp file in the target directory which is then renamed over path, so
// readers (including a running PatternsWatcher) never see a partial file.
func WritePatternsFile(path string, spec patterns.Spec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal patterns: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".patterns.*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Remove the temp file unless the rename consumed it.
	defer func() {
		if _, err := os.Stat(tmpPath); err == nil {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %q: %w", path, err)
	}

	return nil
}
