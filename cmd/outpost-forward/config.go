package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the forwarder's YAML configuration. Environment variables
// (OUTPOST_LOG_ROOT, OUTPOST_ENDPOINT, OUTPOST_TOKEN, OUTPOST_SERVICE_NAME,
// OUTPOST_METRICS_LISTEN) override the file.
type Config struct {
	// LogRoot is walked recursively for *.log files.
	LogRoot         string `yaml:"log_root"`
	ScanIntervalSec int    `yaml:"scan_interval_sec"`
	// IdleTimeoutSec stops tailing a file after this long without new
	// lines; the file is rediscovered on a later scan if it wakes up.
	IdleTimeoutSec int `yaml:"idle_timeout_sec"`

	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
	Token       string `yaml:"token"`
	Insecure    bool   `yaml:"insecure"`

	// BatchSize and FlushIntervalMs tune the shipping engine; zero keeps
	// the client defaults.
	BatchSize       int `yaml:"batch_size"`
	FlushIntervalMs int `yaml:"flush_interval_ms"`

	Metrics MetricsConfig `yaml:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// loadConfig reads, overrides, defaults, and validates the configuration.
// An empty path starts from a zero config, useful for pure-env deployments.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.LogRoot = getEnv("OUTPOST_LOG_ROOT", c.LogRoot)
	c.Endpoint = getEnv("OUTPOST_ENDPOINT", c.Endpoint)
	c.Token = getEnv("OUTPOST_TOKEN", c.Token)
	c.ServiceName = getEnv("OUTPOST_SERVICE_NAME", c.ServiceName)
	c.Metrics.Listen = getEnv("OUTPOST_METRICS_LISTEN", c.Metrics.Listen)
}

func (c *Config) applyDefaults() {
	if c.LogRoot == "" {
		c.LogRoot = "/var/log"
	}
	if c.ScanIntervalSec == 0 {
		c.ScanIntervalSec = 10
	}
	if c.IdleTimeoutSec == 0 {
		c.IdleTimeoutSec = 300
	}
	if c.ServiceName == "" {
		c.ServiceName = "outpost-forward"
	}
}

// Validate checks for semantic correctness in the configuration.
func (c *Config) Validate() error {
	problems := make([]string, 0)

	if strings.TrimSpace(c.LogRoot) == "" {
		problems = append(problems, "log_root is required")
	}
	if c.ScanIntervalSec <= 0 {
		problems = append(problems, "scan_interval_sec must be greater than zero")
	}
	if c.IdleTimeoutSec < 0 {
		problems = append(problems, "idle_timeout_sec must be non-negative")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		problems = append(problems, "endpoint is required")
	}
	if strings.TrimSpace(c.Token) == "" {
		problems = append(problems, "token is required")
	}
	if c.BatchSize < 0 {
		problems = append(problems, "batch_size must be non-negative")
	}
	if c.FlushIntervalMs < 0 {
		problems = append(problems, "flush_interval_ms must be non-negative")
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Listen) == "" {
		problems = append(problems, "metrics.listen must be set when metrics.enabled is true")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalSec) * time.Second
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
