package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/app"
	"workstarter/internal/task"
	logx "workstarter/pkg/logx"
)

var (
	runFlags struct {
		dryRun bool
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "run the agent now (with --dry-run, print instead of launching)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			opts := app.Options{ConfigDir: commonFlags.configDir}
			if runFlags.dryRun {
				opts.Log = logx.NewConsole("warn")
				opts.NoHistory = true
				opts.Launcher = task.LauncherFuncs{
					Open: func(_ context.Context, rawURL, browser string) error {
						if browser != "" {
							fmt.Fprintf(out, "%s %s in %s\n", color.CyanString("would open"), rawURL, browser)
						} else {
							fmt.Fprintf(out, "%s %s\n", color.CyanString("would open"), rawURL)
						}
						return nil
					},
					Start: func(_ context.Context, path string) error {
						fmt.Fprintf(out, "%s %s\n", color.CyanString("would start"), path)
						return nil
					},
				}
			}

			a, err := app.New(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			rep, err := a.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d/%d launched\n", rep.Succeeded(), len(rep.Results))
			for _, res := range rep.Failed() {
				fmt.Fprintf(out, "  %s %s: %v\n", color.RedString("x"), res.Name, res.Err)
			}
			return nil
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "print each action at its time instead of performing it")
	rootCmd.AddCommand(runCmd)
}
