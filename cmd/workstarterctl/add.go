package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/config"
)

const (
	delayFlagName   = "delay"
	browserFlagName = "browser"
	urlFlagName     = "url"
	pathFlagName    = "path"
	yesFlagName     = "yes"
)

var (
	addCmd = &cobra.Command{
		Use:   "add",
		Short: "append a task to the list",
	}

	addFlags struct {
		delay   int64
		browser string
	}

	addLinkCmd = &cobra.Command{
		Use:   "link <url>",
		Short: "open a URL after a delay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if err := config.ValidateURL(raw); err != nil {
				return err
			}
			d := config.OpenLink(raw, addFlags.delay)
			d.Browser = strings.TrimSpace(addFlags.browser)
			return appendTask(cmd, d)
		},
	}

	addProgramCmd = &cobra.Command{
		Use:   "program <path>",
		Short: "start a program after a delay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appendTask(cmd, config.OpenProgram(strings.TrimSpace(args[0]), addFlags.delay))
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{addLinkCmd, addProgramCmd} {
		c.Flags().Int64Var(&addFlags.delay, delayFlagName, 0, "seconds after agent start")
	}
	addLinkCmd.Flags().StringVar(&addFlags.browser, browserFlagName, "", "browser to open the URL with (default handler if empty)")

	addCmd.AddCommand(addLinkCmd, addProgramCmd)
	rootCmd.AddCommand(addCmd)
}

func appendTask(cmd *cobra.Command, d config.Descriptor) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := readForEdit(path)
	if err != nil {
		return err
	}
	cfg, err = cfg.Add(d)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", color.GreenString("added"), len(cfg.Tasks), d.DisplayName())
	return nil
}
