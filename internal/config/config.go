// Package config loads TrainBot configuration from defaults, a TOML file,
// TRAINBOT_* environment variables and command line flags.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const EnvPrefix = "TRAINBOT_"

const (
	DefaultAPIURL        = "http://localhost:8000/api"
	DefaultListenAddress = ":8080"
	DefaultClockFormat   = "03:04 PM"
	DefaultSessionSecret = "trainbot-dev-session-secret-change-me"
	DefaultAPIListen     = ":8000"
	DefaultAPIDatabase   = "sqlite://trainbot.db"
	DefaultSeedCSV       = "All_Indian_Trains.csv"
)

// Config is shared by every TrainBot binary. Each binary validates the
// subset it needs.
type Config struct {
	APIURL           string    `koanf:"api_url"`
	ListenAddress    string    `koanf:"listen_address"`
	TelemetryAddress string    `koanf:"telemetry_address"`
	SessionSecret    string    `koanf:"session_secret"`
	ClockFormat      string    `koanf:"clock_format"`
	Verbose          bool      `koanf:"verbose"`
	API              APIConfig `koanf:"api"`
}

// APIConfig configures the reference backend.
type APIConfig struct {
	ListenAddress string   `koanf:"listen_address"`
	Database      string   `koanf:"database"`
	SeedCSV       string   `koanf:"seed_csv"`
	CORSOrigins   []string `koanf:"cors_origins"`
}

// flagKeys maps command line flag names onto config keys. Flags not listed
// here (for example -toml or -version) never reach the config.
var flagKeys = map[string]string{
	"api-url":      "api_url",
	"listen":       "listen_address",
	"telemetry":    "telemetry_address",
	"clock-format": "clock_format",
	"verbose":      "verbose",
	"api-listen":   "api.listen_address",
	"database":     "api.database",
	"seed-csv":     "api.seed_csv",
	"cors-origin":  "api.cors_origins",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"api_url":           DefaultAPIURL,
		"listen_address":    DefaultListenAddress,
		"telemetry_address": "",
		"session_secret":    DefaultSessionSecret,
		"clock_format":      DefaultClockFormat,
		"verbose":           false,
		"api.listen_address": DefaultAPIListen,
		"api.database":       DefaultAPIDatabase,
		"api.seed_csv":       DefaultSeedCSV,
		"api.cors_origins": []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://localhost:8080",
		},
	}
}

// Load builds a Config. Precedence, highest first: changed flags, TRAINBOT_*
// environment variables (a .env file in the working directory is read into
// the environment first), the TOML file at tomlPath, defaults.
func Load(tomlPath string, flags *pflag.FlagSet) (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if tomlPath != "" {
		if err := k.Load(file.Provider(tomlPath), TOML()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", tomlPath, err)
		}
	}

	// TRAINBOT_API_URL -> api_url, TRAINBOT_API__DATABASE -> api.database
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// ValidateClient checks the settings every client front end needs.
func (cfg *Config) ValidateClient() error {
	if cfg.APIURL == "" {
		return fmt.Errorf("api_url cannot be empty")
	}
	parsed, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("api_url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api_url must be an http or https URL, got %q", cfg.APIURL)
	}
	if cfg.ClockFormat == "" {
		return fmt.Errorf("clock_format cannot be empty")
	}
	return nil
}

// ValidateWeb checks the web client settings.
func (cfg *Config) ValidateWeb() error {
	if err := cfg.ValidateClient(); err != nil {
		return err
	}
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen_address cannot be empty")
	}
	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 bytes")
	}
	return nil
}

// ValidateAPI checks the reference backend settings.
func (cfg *Config) ValidateAPI() error {
	if cfg.API.ListenAddress == "" {
		return fmt.Errorf("api.listen_address cannot be empty")
	}
	if cfg.API.Database == "" {
		return fmt.Errorf("api.database cannot be empty")
	}
	if cfg.API.SeedCSV == "" {
		return fmt.Errorf("api.seed_csv cannot be empty")
	}
	return nil
}
