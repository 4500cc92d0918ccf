package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config models smartdesk.yml.
type Config struct {
	Scheduler struct {
		ScanIntervalMinutes int `yaml:"scan_interval_minutes"`
	} `yaml:"scheduler"`
	Dashboard struct {
		UpcomingDays int `yaml:"upcoming_days"`
	} `yaml:"dashboard"`
	API struct {
		Listen    string `yaml:"listen"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"api"`
	Notifications struct {
		Webhooks []WebhookConfig `yaml:"webhooks"`
	} `yaml:"notifications"`
}

// WebhookConfig describes one reminder webhook target.
type WebhookConfig struct {
	URL            string `yaml:"url"`
	Secret         string `yaml:"secret"`
	Enabled        *bool  `yaml:"enabled"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Scheduler.ScanIntervalMinutes < 1 {
		return fmt.Errorf("config.scheduler.scan_interval_minutes must be at least 1")
	}
	if c.Dashboard.UpcomingDays < 0 {
		return fmt.Errorf("config.dashboard.upcoming_days must not be negative")
	}
	for i, hook := range c.Notifications.Webhooks {
		if strings.TrimSpace(hook.URL) == "" {
			return fmt.Errorf("config.notifications.webhooks[%d].url is required", i)
		}
		if hook.TimeoutSeconds < 0 {
			return fmt.Errorf("config.notifications.webhooks[%d].timeout_seconds must not be negative", i)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "smartdesk.yml")
}

// Load reads and validates config from the workspace.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if no file exists in the workspace.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GenerateDefault returns the default config YAML for `smartdesk config init`.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `scheduler:
  # How often the reminder scanner polls for due tasks. Minimum one minute.
  scan_interval_minutes: 1

dashboard:
  # Days ahead of the reference date that count as "upcoming".
  upcoming_days: 7

api:
  listen: "127.0.0.1:8760"
  # Set a secret to require Bearer tokens on the HTTP API.
  jwt_secret: ""

notifications:
  webhooks: []
  # - url: "https://example.invalid/reminders"
  #   secret: ""
  #   timeout_seconds: 5
`
