package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print the configured tasks in launch order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		cfg, err := readForEdit(path)
		if err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func printTasks(w io.Writer, cfg config.Configuration) {
	if len(cfg.Tasks) == 0 {
		fmt.Fprintln(w, color.YellowString("no tasks configured"))
		return
	}
	for i, d := range cfg.Tasks {
		fmt.Fprintf(w, "%s %s %s\n",
			color.CyanString("%3d.", i+1),
			d.DisplayName(),
			color.MagentaString("(+%ds)", d.Delay),
		)
		fmt.Fprintf(w, "     %s\n", d.Target())
		if d.Browser != "" {
			fmt.Fprintf(w, "     browser: %s\n", d.Browser)
		}
	}
}
