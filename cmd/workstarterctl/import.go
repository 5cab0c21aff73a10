package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/config"
)

var (
	importFlags struct {
		yes bool
	}

	importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "replace the task list with the tasks of a JSON or YAML file",
		Long:  "Replace the task list with the tasks of a JSON or YAML file.\nThe logging and history sections of the current configuration are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := config.Read(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			path, err := configPath()
			if err != nil {
				return err
			}

			// Only the task list is replaced; a file that cannot be read is left alone.
			cfg, err := readForEdit(path)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !importFlags.yes {
				fmt.Fprintf(cmd.OutOrStdout(), "%v%v%v",
					color.CyanString("Are you sure you want to replace the tasks in "),
					color.MagentaString(path),
					color.CyanString("? (y/N) "),
				)
				response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && response == "" {
					return fmt.Errorf("failed to read from console: %w", err)
				}
				if strings.ToLower(strings.TrimSpace(response)) != "y" {
					return nil
				}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg.Tasks = src.Tasks
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("failed to save %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d task(s) into %s\n", color.GreenString("imported"), len(src.Tasks), path)
			return nil
		},
	}
)

func init() {
	importCmd.Flags().BoolVarP(&importFlags.yes, yesFlagName, "y", false, "do not ask before overwriting")
	rootCmd.AddCommand(importCmd)
}
