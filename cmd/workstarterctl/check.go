package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/config"
	logx "workstarter/pkg/logx"
)

var (
	checkFlags struct {
		watch bool
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "validate the configuration the agent will load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !checkFlags.watch {
				cfg, err := config.Read(path)
				reportCheck(out, path, cfg, err)
				if err != nil && !errors.Is(err, config.ErrNotFound) {
					return err
				}
				return nil
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			log := logx.NewConsole("warn").With(logx.String("comp", "watch"))
			w := config.NewWatcher(path, log, func(cfg config.Configuration, err error) {
				reportCheck(out, path, cfg, err)
			})
			w.Check()
			fmt.Fprintln(out, color.CyanString("watching %s (Ctrl-C to stop)", path))
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
)

func init() {
	checkCmd.Flags().BoolVarP(&checkFlags.watch, "watch", "w", false, "re-check whenever the file changes")
	rootCmd.AddCommand(checkCmd)
}

func reportCheck(w io.Writer, path string, cfg config.Configuration, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(w, "%s %s: %d task(s)\n", color.GreenString("ok"), path, len(cfg.Tasks))
	case errors.Is(err, config.ErrNotFound):
		fmt.Fprintf(w, "%s %s does not exist; the agent will run nothing\n", color.YellowString("missing"), path)
	case errors.Is(err, config.ErrMalformed):
		fmt.Fprintf(w, "%s %v\n  the agent will run nothing\n", color.YellowString("malformed"), err)
	default:
		fmt.Fprintf(w, "%s %v\n  the agent will refuse to start\n", color.RedString("invalid"), err)
	}
}
