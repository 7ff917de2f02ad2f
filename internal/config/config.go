package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models projector.yml.
type Config struct {
	Workflow struct {
		DefaultTotalStations int           `yaml:"default_total_stations"`
		StationInterval      time.Duration `yaml:"station_interval"`
		StationActivities    []string      `yaml:"station_activities"`
	} `yaml:"workflow"`
	Workload struct {
		FullLoad int `yaml:"full_load"`
		Top      int `yaml:"top"`
	} `yaml:"workload"`
	Dashboard struct {
		Recent int `yaml:"recent"`
	} `yaml:"dashboard"`
	Session struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"session"`
	Store struct {
		RequestTimeout time.Duration `yaml:"request_timeout"`
		ListRetries    uint64        `yaml:"list_retries"`
		RetryBase      time.Duration `yaml:"retry_base"`
	} `yaml:"store"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

type WebhookConfig struct {
	URL            string   `yaml:"url"`
	Events         []string `yaml:"events"`
	Secret         string   `yaml:"secret"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Enabled        *bool    `yaml:"enabled"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with projector init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Workflow.DefaultTotalStations < 1 {
		return fmt.Errorf("config.workflow.default_total_stations must be at least 1")
	}
	if c.Workflow.StationInterval <= 0 {
		return fmt.Errorf("config.workflow.station_interval must be positive")
	}
	for i, name := range c.Workflow.StationActivities {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("config.workflow.station_activities[%d] is empty", i)
		}
	}
	if c.Workload.FullLoad < 1 {
		return fmt.Errorf("config.workload.full_load must be at least 1")
	}
	if c.Workload.Top < 1 {
		return fmt.Errorf("config.workload.top must be at least 1")
	}
	if c.Dashboard.Recent < 1 {
		return fmt.Errorf("config.dashboard.recent must be at least 1")
	}
	if c.Session.TTL < time.Minute {
		return fmt.Errorf("config.session.ttl must be at least 1m")
	}
	if c.Store.RequestTimeout <= 0 {
		return fmt.Errorf("config.store.request_timeout must be positive")
	}
	if c.Store.RetryBase <= 0 {
		return fmt.Errorf("config.store.retry_base must be positive")
	}
	for i, hook := range c.Webhooks {
		if strings.TrimSpace(hook.URL) == "" {
			return fmt.Errorf("config.webhooks[%d].url is required", i)
		}
		if hook.TimeoutSeconds < 0 {
			return fmt.Errorf("config.webhooks[%d].timeout_seconds must not be negative", i)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "projector.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys keep their defaults.
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

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `workflow:
  default_total_stations: 5
  station_interval: 168h
  station_activities:
    - Kickoff discussion
    - Technical specification
    - Tender approval
    - Tender preparation
    - Tender publication
    - Bid evaluation
    - Procurement committee approval
    - Final approval

workload:
  full_load: 5
  top: 8

dashboard:
  recent: 8

session:
  ttl: 15m

store:
  request_timeout: 5s
  list_retries: 3
  retry_base: 100ms

webhooks: []
`
