package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tarediiran-industries.com/trainbot/internal/trainsync"
)

func NewTrainsCmd(app *TrainbotCtlApp) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trains",
		Short: "List the trains known to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Gateway.ListTrains(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", trainsync.DefaultFetchFailure, err)
			}

			out := cmd.OutOrStdout()
			if len(list.Data) == 0 {
				fmt.Fprintln(out, "No train data yet. Run `trainbot-ctl seed` to load it.")
				return nil
			}

			rows := list.Data
			if limit > 0 && limit < len(rows) {
				rows = rows[:limit]
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Train No", "Train Name", "Starts", "Ends"})
			for _, train := range rows {
				t.AppendRow(table.Row{train.ID, train.TrainNo, train.TrainName, train.Starts, train.Ends})
			}
			t.Render()
			fmt.Fprintf(out, "(%d of %d trains)\n", len(rows), len(list.Data))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many trains (0 shows all)")

	return cmd
}
