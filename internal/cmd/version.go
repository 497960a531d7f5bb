package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tarediiran-industries.com/trainbot/internal/common"
)

func NewVersionCmd(app *TrainbotCtlApp) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the trainbot-ctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: version %s (%s)\n", cmd.Root().Name(), common.Version, common.GitCommit)
		},
	}
}
