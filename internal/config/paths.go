package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppName  = "WorkStarter"
	FileName = "config.json"

	// EnvDir overrides the configuration directory.
	EnvDir = "WORKSTARTER_CONFIG_DIR"
)

// ResolveDir picks the configuration directory: explicit override, then
// $WORKSTARTER_CONFIG_DIR, then <user config dir>/WorkStarter.
//
// Resolve once at process entry and pass the result down.
func ResolveDir(override string) (string, error) {
	if d := strings.TrimSpace(override); d != "" {
		return filepath.Clean(d), nil
	}
	if d := strings.TrimSpace(os.Getenv(EnvDir)); d != "" {
		return filepath.Clean(d), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// FilePath returns the path of config.json inside dir.
func FilePath(dir string) string { return filepath.Join(dir, FileName) }
