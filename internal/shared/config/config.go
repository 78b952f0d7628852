package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/TheStevenMiller/Discord-Bot/internal/shared/errors"
)

// UserAgent identifies this client on every Discord API request, as
// required by the Discord developer terms.
const UserAgent = "DiscordBot (https://github.com/TheStevenMiller/Discord-Bot, 1.0)"

type Config struct {
	DiscordBotToken           string   `koanf:"discord_bot_token"`
	DiscordChannelID          string   `koanf:"discord_channel_id"`
	DiscordAPIURL             string   `koanf:"discord_api_url"`
	GCSBucketName             string   `koanf:"gcs_bucket_name"`
	GCPProjectID              string   `koanf:"gcp_project_id"`
	GCSBucketLocation         string   `koanf:"gcs_bucket_location"`
	Timezone                  string   `koanf:"timezone"`
	APICallTimeout            int      `koanf:"api_call_timeout"`
	RateLimitWarningThreshold int      `koanf:"rate_limit_warning_threshold"`
	LogLevel                  LogLevel `koanf:"log_level"`
	AppEnv                    AppEnv   `koanf:"app_env"`
}

func Load() (*Config, error) {
	// Load .env into the process environment first so the env provider
	// below picks it up (values already set in the environment win).
	_ = godotenv.Load()

	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	// Use lo.Find to find the first existing config file
	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Load environment variables (they override config file values)
	// Convert DISCORD_BOT_TOKEN -> discord_bot_token
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("discord_api_url") {
		k.Set("discord_api_url", "https://discord.com/api/v10")
	}
	if !k.Exists("gcs_bucket_location") {
		k.Set("gcs_bucket_location", "us-central1")
	}
	if !k.Exists("timezone") {
		k.Set("timezone", "America/New_York")
	}
	if !k.Exists("api_call_timeout") {
		k.Set("api_call_timeout", 30)
	}
	if !k.Exists("rate_limit_warning_threshold") {
		k.Set("rate_limit_warning_threshold", 10)
	}
	if !k.Exists("log_level") {
		k.Set("log_level", "info")
	}
	if !k.Exists("app_env") {
		k.Set("app_env", "production")
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// Parse enums from strings, falling back to defaults on junk values
	if level, err := ParseLogLevel(k.String("log_level")); err == nil {
		cfg.LogLevel = level
	} else {
		cfg.LogLevel = LogLevelInfo
	}
	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	// Validate required fields
	if cfg.DiscordBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}
	if cfg.DiscordChannelID == "" {
		return nil, errors.ErrMissingChannelID
	}
	if cfg.GCSBucketName == "" {
		return nil, errors.ErrMissingBucketName
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, oops.With("timezone", cfg.Timezone).Wrap(errors.ErrInvalidTimezone)
	}

	return &cfg, nil
}

// Location resolves the configured time zone. Load has already checked
// the name, so resolution only fails if the zone database changed out
// from under the process.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, oops.With("timezone", c.Timezone).Wrap(err)
	}
	return loc, nil
}

// SlogLevel maps the configured log level onto slog's levels.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// APITimeout returns the per-call timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APICallTimeout) * time.Second
}
