// Package config loads apkicons settings from a YAML config file, a .env
// file and APKICONS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the resolved settings.
type Config struct {
	Manifest      string
	Scopes        string
	DB            string
	IconCacheSize int
	LogLevel      string
	Format        string
}

// LoadOptions says where to look for settings. Empty fields use the
// defaults: $HOME/.config/apkicons/config.yaml and ./.env.
type LoadOptions struct {
	ConfigFile string
	EnvFiles   []string
	ConfigDir  string
}

// Load resolves the configuration. Environment variables override the config
// file, which overrides the defaults. A missing default config file or .env
// file is not an error; a missing explicit config file is.
func Load(opts LoadOptions) (*Config, error) {
	if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return nil, fmt.Errorf("config: load env: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		dir := opts.ConfigDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				dir = filepath.Join(home, ".config", "apkicons")
			}
		}
		if dir != "" {
			v.AddConfigPath(dir)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("APKICONS")

	v.SetDefault("manifest", "AndroidManifest.xml")
	v.SetDefault("scopes", "")
	v.SetDefault("db", filepath.Join(".apkicons", "snapshot.db"))
	v.SetDefault("icon_cache_size", 64)
	v.SetDefault("log_level", "warn")
	v.SetDefault("format", "json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{
		Manifest:      v.GetString("manifest"),
		Scopes:        v.GetString("scopes"),
		DB:            v.GetString("db"),
		IconCacheSize: v.GetInt("icon_cache_size"),
		LogLevel:      v.GetString("log_level"),
		Format:        v.GetString("format"),
	}
	if cfg.IconCacheSize <= 0 {
		return nil, fmt.Errorf("config: icon_cache_size must be positive, got %d", cfg.IconCacheSize)
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		return nil, fmt.Errorf("config: format must be json or text, got %q", cfg.Format)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Logger builds a logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}
