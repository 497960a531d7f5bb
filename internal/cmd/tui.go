package cmd

import (
	"github.com/spf13/cobra"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/conversation"
	"tarediiran-industries.com/trainbot/internal/trainsync"
	"tarediiran-industries.com/trainbot/internal/tui"
)

func NewTUICmd(app *TrainbotCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive home, chat and train list views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			notifier := common.NewNotifier()

			trains := trainsync.New(ctx, app.Gateway, trainsync.Options{Logger: app.Logger, Notifier: notifier})
			defer trains.Close()

			chat := conversation.New(ctx, app.Gateway, conversation.Options{
				Logger:      app.Logger,
				Notifier:    notifier,
				ClockFormat: app.Config.ClockFormat,
			})
			defer chat.Close()

			return tui.Run(ctx, chat, trains, notifier)
		},
	}

	cmd.Flags().String("clock-format", "", "Go time layout for message timestamps")

	return cmd
}
