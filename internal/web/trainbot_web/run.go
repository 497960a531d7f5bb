package trainbot_web

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/config"
	"tarediiran-industries.com/trainbot/internal/conversation"
	"tarediiran-industries.com/trainbot/internal/gateway"
	"tarediiran-industries.com/trainbot/internal/trainsync"
)

func Run(cfg *config.Config, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := common.NewLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	telemetry := common.NewTelemetryServer(cfg.TelemetryAddress, logger)
	metrics := common.NewMetrics(telemetry.GetRegistry())
	if cfg.TelemetryAddress != "" {
		if err := telemetry.Start(); err != nil {
			logger.Error("failed to start telemetry server", zap.Error(err))
			return 1
		}
		defer func() { _ = telemetry.Stop() }()
	}

	client, err := gateway.New(gateway.Config{
		BaseURL: cfg.APIURL,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to build gateway client", zap.Error(err))
		return 1
	}

	notifier := common.NewNotifier()

	trains := trainsync.New(ctx, client, trainsync.Options{Logger: logger, Notifier: notifier})
	defer trains.Close()

	chat := conversation.New(ctx, client, conversation.Options{
		Logger:      logger,
		Notifier:    notifier,
		ClockFormat: cfg.ClockFormat,
	})
	defer chat.Close()

	server, err := NewTrainbotWebServer(ServerConfig{
		ListenAddress: cfg.ListenAddress,
		SessionSecret: cfg.SessionSecret,
		Chat:          chat,
		Trains:        trains,
		Updates:       notifier,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to build web server", zap.Error(err))
		return 1
	}

	logger.Info("starting trainbot web client",
		zap.String("version", common.Version),
		zap.String("api_url", client.BaseURL()),
	)
	if err := server.Serve(ctx); err != nil {
		logger.Error("web server stopped", zap.Error(err))
		return 1
	}
	return 0
}
