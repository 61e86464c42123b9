package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url" envconfig:"BYRO_API_URL"`
		TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"BYRO_API_TIMEOUT_SECONDS"`
	} `yaml:"api"`
	Inbox struct {
		PollIntervalMS int `yaml:"poll_interval_ms" envconfig:"BYRO_POLL_INTERVAL_MS"`
	} `yaml:"inbox"`
	Triage struct {
		DefaultCategory string `yaml:"default_category" envconfig:"BYRO_DEFAULT_CATEGORY"`
	} `yaml:"triage"`
	Preview struct {
		MaxPages int `yaml:"max_pages" envconfig:"BYRO_PREVIEW_MAX_PAGES"`
	} `yaml:"preview"`
	Log struct {
		File  string `yaml:"file" envconfig:"BYRO_LOG_FILE"`
		Level string `yaml:"level" envconfig:"BYRO_LOG_LEVEL"`
	} `yaml:"log"`
}

// Load loads configuration from file or returns defaults.
// Environment variables prefixed with BYRO_ override both.
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(os.Getenv("HOME"), ".byro", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envconfig.Process("byro", cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".byro")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.TimeoutSeconds = 30
	cfg.Inbox.PollIntervalMS = 2000
	cfg.Triage.DefaultCategory = "contract"
	cfg.Preview.MaxPages = 10
	cfg.Log.File = filepath.Join(os.Getenv("HOME"), ".byro", "byro.log")
	cfg.Log.Level = "info"

	return cfg
}

// APITimeout returns the HTTP client timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval returns the inbox poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Inbox.PollIntervalMS) * time.Millisecond
}
