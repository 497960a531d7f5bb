package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewHealthCmd(app *TrainbotCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the TrainBot backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Gateway.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend %s is unhealthy: %w", app.Gateway.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend %s: ok\n", app.Gateway.BaseURL())
			return nil
		},
	}

	return cmd
}
