package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save rewrites the whole configuration file at path (no partial updates).
//
// The document is written to a temp file in the same directory and renamed
// into place, so a concurrent reader sees either the old or the new file.
// YAML paths are written as JSON; Parse accepts both.
func Save(path string, cfg Configuration) error {
	if cfg.Tasks == nil {
		cfg.Tasks = []Descriptor{}
	}
	for i, d := range cfg.Tasks {
		if err := ValidateDescriptor(d); err != nil {
			return &TaskError{Index: i, Type: string(d.Type), Err: err}
		}
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
