// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"commit-watcher/internal/commitlog"
	custom_errors "commit-watcher/internal/errors"
	"commit-watcher/internal/poller"
)

// Config holds all configuration for the service.
type Config struct {
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
	BaseURL      string        `mapstructure:"BASE_URL"`
	Repo         string        `mapstructure:"REPO"`
	Branch       string        `mapstructure:"BRANCH"`
	PollInterval time.Duration `mapstructure:"POLL_INTERVAL"`
	HTTPAddr     string        `mapstructure:"HTTP_ADDR"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("BASE_URL", commitlog.DefaultBaseURL)
	viper.SetDefault("REPO", commitlog.DefaultRepo)
	viper.SetDefault("BRANCH", commitlog.DefaultBranch)
	viper.SetDefault("POLL_INTERVAL", poller.DefaultInterval.String())
	viper.SetDefault("HTTP_ADDR", ":8080")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.PollInterval <= 0 {
		return nil, &custom_errors.ErrInvalidInterval{Interval: cfg.PollInterval}
	}

	return &cfg, nil
}
