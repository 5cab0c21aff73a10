package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"workstarter/internal/config"
	"workstarter/internal/storage"
	logx "workstarter/pkg/logx"
)

const (
	historyFileName   = "history.jsonl"
	historySQLiteName = "history.db"
)

// mapLoggingConfig fills in defaults: info level, console on, file on at
// <temp dir>/WorkStarter.log.
func mapLoggingConfig(lc *config.LoggingConfig) logx.Config {
	out := logx.Config{
		Level:   "info",
		Console: true,
		File:    logx.FileConfig{Enabled: true},
	}
	if lc == nil {
		return out
	}
	if lvl := strings.TrimSpace(lc.Level); lvl != "" {
		out.Level = lvl
	}
	if lc.Console != nil {
		out.Console = *lc.Console
	}
	if lc.File.Enabled != nil {
		out.File.Enabled = *lc.File.Enabled
	}
	out.File.Path = strings.TrimSpace(lc.File.Path)
	return out
}

// mapStorageConfig resolves the history section against the config dir.
// The second return is false when history is disabled.
func mapStorageConfig(hc *config.HistoryConfig, dir string) (storage.Config, bool, error) {
	driver := "file"
	path := ""
	if hc != nil {
		if d := strings.TrimSpace(hc.Driver); d != "" {
			driver = strings.ToLower(d)
		}
		path = strings.TrimSpace(hc.Path)
	}

	switch driver {
	case "none":
		return storage.Config{}, false, nil
	case "file":
		if path == "" {
			path = filepath.Join(dir, historyFileName)
		}
		return storage.Config{Driver: "file", Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			path = filepath.Join(dir, historySQLiteName)
		}
		return storage.Config{Driver: "sqlite", Path: path}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown history.driver: %s", driver)
	}
}

// OpenHistory opens the history store configured for dir, or returns nil
// when history is disabled. The editor uses it to show past runs.
func OpenHistory(dir string, cfg config.Configuration, log logx.Logger) (storage.Store, error) {
	sc, enabled, err := mapStorageConfig(cfg.History, dir)
	if err != nil || !enabled {
		return nil, err
	}
	return storage.Open(sc, log)
}
