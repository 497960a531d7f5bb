package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tarediiran-industries.com/trainbot/internal/gateway"
	"tarediiran-industries.com/trainbot/internal/trainsync"
)

func NewSeedCmd(app *TrainbotCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Ask the backend to load its train dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Gateway.SeedTrains(cmd.Context()); err != nil {
				var seedErr *gateway.SeedError
				if errors.As(err, &seedErr) {
					return errors.New(trainsync.SeedFailurePrefix + seedErr.Detail)
				}
				return fmt.Errorf("%s%w", trainsync.SeedFailurePrefix, err)
			}

			list, err := app.Gateway.ListTrains(cmd.Context())
			if err != nil {
				return fmt.Errorf("seeded, but %s: %w", trainsync.DefaultFetchFailure, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded train data: %d trains available\n", len(list.Data))
			return nil
		},
	}

	return cmd
}
