package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/config"
)

func ParseArgs(programName string, args []string, errOut io.Writer) (*config.Config, error) {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: %s [options]\n\n", programName)
		fmt.Fprintln(errOut, "Options")
		fs.PrintDefaults()
	}

	version := fs.Bool("version", false, "Prints CLI version")
	tomlPath := fs.String("toml", "", "Path to a TOML config file")
	fs.String("api-listen", config.DefaultAPIListen, "Address the API listens on")
	fs.String("database", config.DefaultAPIDatabase, "Database DSN (postgres://... or sqlite://path)")
	fs.String("seed-csv", config.DefaultSeedCSV, "Train CSV loaded by POST /api/seed-data")
	fs.StringSlice("cors-origin", nil, "Allowed CORS origin (repeatable)")
	fs.String("telemetry", "", "Address for /metrics and pprof (disabled when empty)")
	fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *version {
		fmt.Fprintf(errOut, "%s: version %s (%s)\n", programName, common.Version, common.GitCommit)
		return nil, pflag.ErrHelp
	}

	cfg, err := config.Load(*tomlPath, fs)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAPI(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Main(programName string, args []string, stdOut, errOut io.Writer) int {
	cfg, err := ParseArgs(programName, args, errOut)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, "Error:", err)
		return 2
	}

	return Run(cfg, errOut)
}
