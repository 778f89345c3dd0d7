// Package config loads hivectl settings from a config file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joshuapare/hiverecon/internal/logger"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. HIVECTL_LISTEN.
const EnvPrefix = "HIVECTL"

// Config holds settings shared by the CLI and the query server.
type Config struct {
	Recover     bool   `mapstructure:"recover"`
	ReplayLogs  bool   `mapstructure:"replay_logs"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	LogDir      string `mapstructure:"log_dir"`
	Listen      string `mapstructure:"listen"`
	MaxHiveSize int64  `mapstructure:"max_hive_size"`
}

// Load reads configuration. An explicit file must exist; otherwise hivectl.*
// is looked up in the working directory, $HOME/.hivectl and /etc/hivectl and
// its absence is not an error. Variables from .env are loaded first and never
// override the real environment.
func Load(file string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("hivectl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hivectl")
		v.AddConfigPath("/etc/hivectl")
	}

	v.SetDefault("recover", false)
	v.SetDefault("replay_logs", true)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_dir", "")
	v.SetDefault("listen", "127.0.0.1:8470")
	v.SetDefault("max_hive_size", int64(2<<30))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("log_format: unknown format %q", cfg.LogFormat)
	}
	if cfg.MaxHiveSize < 0 {
		return nil, fmt.Errorf("max_hive_size: must not be negative")
	}
	return &cfg, nil
}

// LoadOptions returns parse options seeded from the configuration.
func (c *Config) LoadOptions() types.LoadOptions {
	return types.LoadOptions{
		Recover:     c.Recover,
		ReplayLogs:  c.ReplayLogs,
		MaxHiveSize: c.MaxHiveSize,
	}
}

// LoggerOptions returns the logger setup. Load has already validated the
// level and format.
func (c *Config) LoggerOptions() logger.Options {
	level, _ := logger.ParseLevel(c.LogLevel)
	return logger.Options{
		Enabled: true,
		Level:   level,
		Format:  c.LogFormat,
		LogDir:  c.LogDir,
	}
}
