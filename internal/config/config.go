// Package config loads garden configuration from file, environment, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppConfig holds all application configuration.
// It is built once by NewConfig and handed to the components that need it.
type AppConfig struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// StorageConfig selects the durable key-value backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres, memory
	Path   string `mapstructure:"path"`   // SQLite file
	DSN    string `mapstructure:"dsn"`    // Postgres connection string
}

// GeneratorConfig configures the AI collaborator.
type GeneratorConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, openai_compatible, anthropic, offline
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"` // console or json
	Output  []LogOutputConfig `mapstructure:"output"`
	Levels  map[string]string `mapstructure:"levels"`
	Context LogContextConfig  `mapstructure:"context"`
}

// LogOutputConfig defines where logs are written.
type LogOutputConfig struct {
	Type    string          `mapstructure:"type"` // "file" or "console"
	Enabled bool            `mapstructure:"enabled"`
	Path    string          `mapstructure:"path"`
	Rotate  LogRotateConfig `mapstructure:"rotate"`
}

// LogRotateConfig defines log rotation settings.
type LogRotateConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// LogContextConfig defines what context to include in log lines.
type LogContextConfig struct {
	IncludeCaller    bool `mapstructure:"include_caller"`
	IncludeTimestamp bool `mapstructure:"include_timestamp"`
}

// TelemetryConfig configures the OTLP exporters. An empty endpoint disables them.
type TelemetryConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name"`
}

// NewConfig creates an AppConfig by reading from a file, environment
// variables, and applying defaults. An empty configPath searches the
// standard locations for garden.yaml.
func NewConfig(configPath string) (*AppConfig, error) {
	cfg := defaultConfig()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("garden")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.garden")
	}

	v.SetEnvPrefix("GARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.expandPaths()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnv registers the keys that may be set from the environment alone.
// AutomaticEnv only consults keys viper already knows about.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"storage.driver", "storage.path", "storage.dsn",
		"generator.provider", "generator.model", "generator.api_key",
		"generator.base_url", "generator.timeout",
		"log.level", "log.format",
		"telemetry.endpoint", "telemetry.insecure",
	} {
		_ = v.BindEnv(key)
	}
}

// defaultConfig returns an AppConfig with default values.
func defaultConfig() AppConfig {
	return AppConfig{
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "$HOME/.garden/garden.db",
		},
		Generator: GeneratorConfig{
			Provider:    "offline",
			Model:       "gpt-4o-mini",
			Timeout:     20 * time.Second,
			MaxTokens:   512,
			Temperature: 0.8,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "console",
			Output: []LogOutputConfig{
				{
					Type:    "file",
					Enabled: true,
					Path:    "$HOME/.garden/logs/garden.log",
					Rotate: LogRotateConfig{
						MaxSizeMB:  10,
						MaxBackups: 3,
						MaxAgeDays: 30,
						Compress:   true,
					},
				},
				{
					Type:    "console",
					Enabled: false,
				},
			},
			Levels: map[string]string{
				"engine":    "INFO",
				"store":     "INFO",
				"persist":   "INFO",
				"generator": "INFO",
				"cli":       "WARN",
			},
			Context: LogContextConfig{
				IncludeCaller:    false,
				IncludeTimestamp: true,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName: "garden",
		},
	}
}

// expandPaths expands ~ and environment variables in path values.
func (c *AppConfig) expandPaths() {
	c.Storage.Path = expandPath(c.Storage.Path)
	for i := range c.Log.Output {
		c.Log.Output[i].Path = expandPath(c.Log.Output[i].Path)
	}
}

// expandPath expands ~ to the home directory and environment variables.
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

var validProviders = map[string]bool{
	"openai":            true,
	"openai_compatible": true,
	"anthropic":         true,
	"offline":           true,
}

// validate checks if the configuration is valid.
func (c *AppConfig) validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage driver: %s", c.Storage.Driver)
	}

	if !validProviders[c.Generator.Provider] {
		return fmt.Errorf("invalid generator provider: %s", c.Generator.Provider)
	}
	if c.Generator.Provider == "openai_compatible" && c.Generator.BaseURL == "" {
		return errors.New("generator.base_url is required for openai_compatible")
	}
	if c.Generator.Timeout <= 0 {
		return fmt.Errorf("invalid generator timeout: %s", c.Generator.Timeout)
	}

	validLogLevels := map[string]bool{
		"TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	if !validLogLevels[strings.ToUpper(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json', got: %s", c.Log.Format)
	}

	return nil
}
