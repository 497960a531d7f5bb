package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/config"
	"tarediiran-industries.com/trainbot/internal/gateway"
)

type TrainbotCtlApp struct {
	ConfigPath string

	Config  *config.Config
	Logger  *zap.Logger
	Gateway *gateway.Client
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &TrainbotCtlApp{}
	rootCmd := NewRootCmd(app)
	defer app.Close()
	return rootCmd.ExecuteContext(ctx)
}

func NewRootCmd(app *TrainbotCtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trainbot-ctl",
		Short:         "Ask TrainBot about trains and manage the train dataset",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return app.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(
		&app.ConfigPath,
		"toml",
		"",
		"Path to configuration file",
	)
	cmd.PersistentFlags().String("api-url", config.DefaultAPIURL, "Base URL of the TrainBot backend API")
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(NewAskCmd(app))
	cmd.AddCommand(NewTrainsCmd(app))
	cmd.AddCommand(NewSeedCmd(app))
	cmd.AddCommand(NewHealthCmd(app))
	cmd.AddCommand(NewVersionCmd(app))
	cmd.AddCommand(NewTUICmd(app))

	return cmd
}

// setup loads configuration and builds the logger and gateway client. A
// logger or gateway injected beforehand is kept.
func (app *TrainbotCtlApp) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateClient(); err != nil {
		return err
	}
	app.Config = cfg

	if app.Logger == nil {
		logger, err := common.NewLogger(cfg.Verbose)
		if err != nil {
			return err
		}
		app.Logger = logger
	}

	if app.Gateway == nil {
		client, err := gateway.New(gateway.Config{BaseURL: cfg.APIURL, Logger: app.Logger})
		if err != nil {
			return fmt.Errorf("failed to build gateway client: %w", err)
		}
		app.Gateway = client
	}
	return nil
}

func (app *TrainbotCtlApp) Close() {
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
