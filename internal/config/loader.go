package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service. Durations are Go duration
// strings ("1s", "5m"). Zero values are filled from Default by Load.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr"`
	Model      string `json:"model" yaml:"model" toml:"model"`
	ModelLabel string `json:"model_label" yaml:"model_label" toml:"model_label"`

	DaemonBin      string `json:"daemon_bin" yaml:"daemon_bin" toml:"daemon_bin"`
	DaemonHost     string `json:"daemon_host" yaml:"daemon_host" toml:"daemon_host"`
	DaemonPort     int    `json:"daemon_port" yaml:"daemon_port" toml:"daemon_port"`
	DaemonLog      string `json:"daemon_log" yaml:"daemon_log" toml:"daemon_log"`
	HealthAttempts int    `json:"health_attempts" yaml:"health_attempts" toml:"health_attempts"`
	HealthInterval string `json:"health_interval" yaml:"health_interval" toml:"health_interval"`

	RequestTimeout string   `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	MaxBodyBytes   int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	RateLimitRPS   float64  `json:"rate_limit_rps" yaml:"rate_limit_rps" toml:"rate_limit_rps"`
	RateLimitBurst int      `json:"rate_limit_burst" yaml:"rate_limit_burst" toml:"rate_limit_burst"`
	CORSEnabled    bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string `json:"log_format" yaml:"log_format" toml:"log_format"`
	TraceExporter   string `json:"trace_exporter" yaml:"trace_exporter" toml:"trace_exporter"`
	CatalogCacheTTL string `json:"catalog_cache_ttl" yaml:"catalog_cache_ttl" toml:"catalog_cache_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            ":5000",
		Model:           "deepseek-r1:7b",
		ModelLabel:      "Chompers",
		DaemonBin:       "ollama",
		DaemonHost:      "127.0.0.1",
		DaemonPort:      11434,
		DaemonLog:       "ollama.log",
		HealthAttempts:  10,
		HealthInterval:  "1s",
		RequestTimeout:  "5m",
		MaxBodyBytes:    1 << 20,
		LogLevel:        "info",
		LogFormat:       "auto",
		TraceExporter:   "none",
		CatalogCacheTTL: "10s",
	}
}

// Load reads a configuration file based on its extension and fills unset
// fields from Default. Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg.WithDefaults(), nil
}

// WithDefaults returns a copy of c with zero fields taken from Default.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.ModelLabel == "" {
		c.ModelLabel = d.ModelLabel
	}
	if c.DaemonBin == "" {
		c.DaemonBin = d.DaemonBin
	}
	if c.DaemonHost == "" {
		c.DaemonHost = d.DaemonHost
	}
	if c.DaemonPort == 0 {
		c.DaemonPort = d.DaemonPort
	}
	if c.DaemonLog == "" {
		c.DaemonLog = d.DaemonLog
	}
	if c.HealthAttempts == 0 {
		c.HealthAttempts = d.HealthAttempts
	}
	if c.HealthInterval == "" {
		c.HealthInterval = d.HealthInterval
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.TraceExporter == "" {
		c.TraceExporter = d.TraceExporter
	}
	if c.CatalogCacheTTL == "" {
		c.CatalogCacheTTL = d.CatalogCacheTTL
	}
	return c
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.DaemonPort <= 0 || c.DaemonPort > 65535 {
		return fmt.Errorf("daemon_port out of range: %d", c.DaemonPort)
	}
	if c.HealthAttempts <= 0 {
		return fmt.Errorf("health_attempts must be positive, got %d", c.HealthAttempts)
	}
	if d, err := time.ParseDuration(c.HealthInterval); err != nil {
		return fmt.Errorf("health_interval: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("health_interval must be positive, got %s", c.HealthInterval)
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("request_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.CatalogCacheTTL); err != nil {
		return fmt.Errorf("catalog_cache_ttl: %w", err)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	switch c.LogFormat {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("unsupported log_format: %s", c.LogFormat)
	}
	switch c.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unsupported trace_exporter: %s", c.TraceExporter)
	}
	return nil
}

// HealthIntervalDuration is HealthInterval parsed; invalid values yield 0.
func (c Config) HealthIntervalDuration() time.Duration { return mustDuration(c.HealthInterval) }

// RequestTimeoutDuration is RequestTimeout parsed; invalid values yield 0.
func (c Config) RequestTimeoutDuration() time.Duration { return mustDuration(c.RequestTimeout) }

// CatalogCacheTTLDuration is CatalogCacheTTL parsed; invalid values yield 0.
func (c Config) CatalogCacheTTLDuration() time.Duration { return mustDuration(c.CatalogCacheTTL) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
