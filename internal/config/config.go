// Package config loads taskdeck's configuration from
// ~/.taskdeck/config.yaml with environment overrides. The resulting
// Config is constructed once at startup and never mutated; a file
// change is delivered as a fresh Config value through the Watcher.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kettle/taskdeck/internal/otel"
)

const (
	defaultServerURL          = "http://127.0.0.1:8080"
	defaultCollectionInterval = 5 * time.Second
	defaultResourceInterval   = 1 * time.Second
	defaultPageSize           = 10
)

// PollConfig holds the fixed polling periods. These are client
// configuration constants, not protocol requirements.
type PollConfig struct {
	// CollectionIntervalSeconds is the full-table refresh period.
	CollectionIntervalSeconds int `yaml:"collection_interval_seconds"`
	// ResourceIntervalSeconds is the single-resource status period.
	ResourceIntervalSeconds int `yaml:"resource_interval_seconds"`
}

// TelegramConfig enables mirroring warning/error toasts to a chat.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}

type Config struct {
	HomeDir string `yaml:"-"`

	// ServerURL is the base URL of the scheduler server's API.
	ServerURL string `yaml:"server_url"`
	LogLevel  string `yaml:"log_level"`
	// PageSize is the table page length.
	PageSize int `yaml:"page_size"`

	Poll     PollConfig     `yaml:"poll"`
	Telegram TelegramConfig `yaml:"telegram"`
	OTel     otel.Config    `yaml:"otel"`
}

// CollectionInterval returns the configured full-collection refresh
// period.
func (c *Config) CollectionInterval() time.Duration {
	if c.Poll.CollectionIntervalSeconds <= 0 {
		return defaultCollectionInterval
	}
	return time.Duration(c.Poll.CollectionIntervalSeconds) * time.Second
}

// ResourceInterval returns the configured single-resource status
// period.
func (c *Config) ResourceInterval() time.Duration {
	if c.Poll.ResourceIntervalSeconds <= 0 {
		return defaultResourceInterval
	}
	return time.Duration(c.Poll.ResourceIntervalSeconds) * time.Second
}

// HomeDir resolves the data directory: $TASKDECK_HOME, else
// ~/.taskdeck.
func HomeDir() string {
	if v := os.Getenv("TASKDECK_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".taskdeck")
}

// Load reads config.yaml from the home directory, applies defaults and
// environment overrides, and validates the result. A missing file is
// not an error: the defaults form a working configuration.
func Load() (*Config, error) {
	homeDir := HomeDir()
	cfg := &Config{HomeDir: homeDir}

	data, err := os.ReadFile(filepath.Join(homeDir, "config.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
		cfg.HomeDir = homeDir
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config.yaml: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKDECK_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
}

func (c *Config) validate() error {
	u, err := url.ParseRequestURI(c.ServerURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("server_url %q is not a valid URL", c.ServerURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url scheme %q is not http(s)", u.Scheme)
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("telegram.enabled is set but no token is configured")
	}
	if c.Telegram.Enabled && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.enabled is set but chat_id is zero")
	}
	return nil
}
