package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tarediiran-industries.com/trainbot/internal/conversation"
)

func NewAskCmd(app *TrainbotCtlApp) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "ask <message...>",
		Short:   "Send one message to TrainBot and print the reply",
		Example: "  trainbot-ctl ask trains from howrah to delhi",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("message cannot be blank")
			}

			reply, err := app.Gateway.SendMessage(cmd.Context(), text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain || len(reply.Trains) == 0 {
				fmt.Fprintln(out, conversation.FormatReply(reply))
				return nil
			}

			fmt.Fprintln(out, reply.Message)
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Train No", "Train Name", "From", "To"})
			for i, train := range reply.Trains {
				t.AppendRow(table.Row{i + 1, train.TrainNumber, train.TrainName, train.SourceStation, train.DestinationStation})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print the reply exactly as the chat view shows it")

	return cmd
}
