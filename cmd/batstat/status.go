package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cptspacemanspiff/batstat/internal/powersupply"
)

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current combined battery level",
		Long:  `Scan the power-supply directory once and print the combined battery level.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			status, err := powersupply.Read(cfg.Sysfs.Root)
			if err != nil {
				return fmt.Errorf("read battery status: %w", err)
			}

			if asJSON {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("encode status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), status.String())
			if state, ok := status.State(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")

	return cmd
}
