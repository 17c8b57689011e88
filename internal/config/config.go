// Package config loads the global foldkit settings and the per-project
// .foldkit profile file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/agusx1211/foldkit/internal/distribute"
	"github.com/agusx1211/foldkit/internal/scan"
)

const EnvPrefix = "FOLDKIT"

type Config struct {
	LogLevel       string           `mapstructure:"log_level"`
	LineCountLimit int64            `mapstructure:"line_count_limit"`
	Profile        string           `mapstructure:"profile"`
	Scan           ScanConfig       `mapstructure:"scan"`
	Distribute     DistributeConfig `mapstructure:"distribute"`
}

type ScanConfig struct {
	Ignore []string `mapstructure:"ignore"`
}

type DistributeConfig struct {
	Extensions []string `mapstructure:"extensions"`
}

// DefaultPath is $HOME/.config/foldkit/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "foldkit", "config.yaml"), nil
}

// Load reads cfgFile, or the default config file when cfgFile is empty.
// A missing default file is not an error; a missing explicit one is.
// FOLDKIT_* environment variables override file values, e.g.
// FOLDKIT_SCAN_IGNORE=node_modules,vendor.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "foldkit"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", logrus.WarnLevel.String())
	v.SetDefault("line_count_limit", scan.DefaultLineCountLimit)
	v.SetDefault("profile", "")
	v.SetDefault("scan.ignore", scan.DefaultIgnore)
	v.SetDefault("distribute.extensions", distribute.DefaultExtensions)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	return &cfg, nil
}

// NewLogger returns a logger writing to stderr at the given level.
func NewLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	return logger, nil
}
