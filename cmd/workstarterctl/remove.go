package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"workstarter/internal/config"
)

var (
	removeFlags struct {
		yes bool
	}

	removeCmd = &cobra.Command{
		Use:   "remove <n>",
		Short: "delete task n",
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
			d, err := taskAt(cfg, args[0])
			if err != nil {
				return err
			}

			if !removeFlags.yes {
				fmt.Fprintf(cmd.OutOrStdout(), "%v%v%v",
					color.CyanString("Are you sure you want to delete "),
					color.MagentaString(d.DisplayName()),
					color.CyanString("? (y/N) "),
				)
				response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && response == "" {
					return fmt.Errorf("failed to read from console: %w", err)
				}
				if strings.ToLower(strings.TrimSpace(response)) != "y" {
					return nil
				}
			}

			cfg, err = cfg.Remove(d)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("failed to save %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("removed"), d.DisplayName())
			return nil
		},
	}
)

func init() {
	removeCmd.Flags().BoolVarP(&removeFlags.yes, yesFlagName, "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(removeCmd)
}
