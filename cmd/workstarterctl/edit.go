package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/config"
)

var (
	editFlags struct {
		url     string
		path    string
		delay   int64
		browser string
	}

	editCmd = &cobra.Command{
		Use:   "edit <n>",
		Short: "change the target or delay of task n (the type is fixed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := readForEdit(path)
			if err != nil {
				return err
			}
			old, err := taskAt(cfg, args[0])
			if err != nil {
				return err
			}

			updated := old
			flags := cmd.Flags()
			switch old.Type {
			case config.KindOpenLink:
				if flags.Changed(pathFlagName) {
					return fmt.Errorf("--%s does not apply to %s tasks", pathFlagName, old.Type)
				}
				if flags.Changed(urlFlagName) {
					raw := strings.TrimSpace(editFlags.url)
					if err := config.ValidateURL(raw); err != nil {
						return err
					}
					updated.URL = raw
				}
				if flags.Changed(browserFlagName) {
					updated.Browser = strings.TrimSpace(editFlags.browser)
				}
			case config.KindOpenProgram:
				if flags.Changed(urlFlagName) || flags.Changed(browserFlagName) {
					return fmt.Errorf("--%s/--%s do not apply to %s tasks", urlFlagName, browserFlagName, old.Type)
				}
				if flags.Changed(pathFlagName) {
					updated.Path = strings.TrimSpace(editFlags.path)
				}
			}
			if flags.Changed(delayFlagName) {
				updated.Delay = editFlags.delay
			}
			if updated == old {
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("nothing to change"))
				return nil
			}

			cfg, err = cfg.Replace(old, updated)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("failed to save %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%s %s\n", color.GreenString("updated"), args[0], updated.DisplayName())
			return nil
		},
	}
)

func init() {
	editCmd.Flags().StringVar(&editFlags.url, urlFlagName, "", "new URL (open_link)")
	editCmd.Flags().StringVar(&editFlags.browser, browserFlagName, "", "new browser, empty for the default handler (open_link)")
	editCmd.Flags().StringVar(&editFlags.path, pathFlagName, "", "new program path (open_program)")
	editCmd.Flags().Int64Var(&editFlags.delay, delayFlagName, 0, "new delay in seconds")
	rootCmd.AddCommand(editCmd)
}
