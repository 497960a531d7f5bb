package api

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
	"tarediiran-industries.com/trainbot/internal/db"
	"tarediiran-industries.com/trainbot/internal/trainstore"
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

	if cfg.TelemetryAddress != "" {
		telemetry := common.NewTelemetryServer(cfg.TelemetryAddress, logger)
		if err := telemetry.Start(); err != nil {
			logger.Error("failed to start telemetry server", zap.Error(err))
			return 1
		}
		defer func() { _ = telemetry.Stop() }()
	}

	database, err := db.NewDatabaseConnection(ctx, cfg.API.Database)
	if err != nil {
		logger.Error("failed to connect to database", zap.String("dsn", db.MaskDSN(cfg.API.Database)), zap.Error(err))
		return 1
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	store := trainstore.New(database, logger)
	if err := store.InitSchema(ctx); err != nil {
		logger.Error("failed to initialise schema", zap.Error(err))
		return 1
	}

	server, err := NewTrainbotAPIServer(ServerConfig{
		ListenAddress: cfg.API.ListenAddress,
		Store:         store,
		SeedCSV:       cfg.API.SeedCSV,
		CORSOrigins:   cfg.API.CORSOrigins,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to build api server", zap.Error(err))
		return 1
	}

	logger.Info("starting trainbot api",
		zap.String("version", common.Version),
		zap.String("driver", string(database.Driver())),
		zap.String("dsn", database.DSN()),
	)
	if err := server.Serve(ctx); err != nil {
		logger.Error("api server stopped", zap.Error(err))
		return 1
	}
	return 0
}
