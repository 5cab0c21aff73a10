package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/app"
	"workstarter/internal/config"
	"workstarter/internal/storage"
	logx "workstarter/pkg/logx"
)

var (
	historyFlags struct {
		limit int
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "show recent agent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := configDir()
			if err != nil {
				return err
			}
			// History settings live in the same file; fall back to defaults if unreadable.
			cfg, err := config.Read(config.FilePath(dir))
			if err != nil {
				cfg = config.Empty()
			}
			st, err := app.OpenHistory(dir, cfg, logx.Nop())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			if st == nil {
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("history is disabled"))
				return nil
			}
			defer st.Close()

			runs, err := st.Runs(context.Background(), historyFlags.limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
)

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 10, "number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func printRuns(w io.Writer, runs []storage.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, color.YellowString("no runs recorded"))
		return
	}
	for _, r := range runs {
		status := color.GreenString("ok")
		if r.Failed > 0 {
			status = color.RedString("%d failed", r.Failed)
		}
		fmt.Fprintf(w, "%s  %d/%d launched  %s  %s\n",
			r.Start.Local().Format(time.DateTime), r.Succeeded, r.Tasks, status, color.HiBlackString(r.ID))
		for _, t := range r.Results {
			if t.Error == "" {
				continue
			}
			fmt.Fprintf(w, "    %s %s: %s\n", color.RedString("x"), t.Name, t.Error)
		}
	}
}
