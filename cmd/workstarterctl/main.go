package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"workstarter/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:          "workstarterctl",
		Short:        "workstarterctl edits the WorkStarter task list",
		SilenceUsage: true,
	}

	commonFlags struct {
		configDir string
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&commonFlags.configDir, "config-dir", "", "configuration directory (default: $"+config.EnvDir+" or the user config dir)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute command: %v\n", err)
		os.Exit(1)
	}
}

func configDir() (string, error) {
	return config.ResolveDir(commonFlags.configDir)
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return config.FilePath(dir), nil
}

// readForEdit loads the file the editor is about to rewrite. A missing file
// starts an empty list; anything unreadable is refused so it is never
// overwritten.
func readForEdit(path string) (config.Configuration, error) {
	cfg, err := config.Read(path)
	if errors.Is(err, config.ErrNotFound) {
		return config.Empty(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("refusing to edit %s: %w", path, err)
	}
	return cfg, nil
}

// taskAt resolves a 1-based position as printed by list.
func taskAt(cfg config.Configuration, arg string) (config.Descriptor, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return config.Descriptor{}, fmt.Errorf("task number must be an integer: %q", arg)
	}
	if n < 1 || n > len(cfg.Tasks) {
		return config.Descriptor{}, fmt.Errorf("no task #%d (have %d)", n, len(cfg.Tasks))
	}
	return cfg.Tasks[n-1], nil
}
