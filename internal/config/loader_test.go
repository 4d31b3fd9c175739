package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nmodel: llama3:8b\ndaemon_port: 12000\nhealth_attempts: 3\nhealth_interval: 250ms\ncors_origins: [\"http://a\", \"http://b\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.Model != "llama3:8b" || cfg.DaemonPort != 12000 || cfg.HealthAttempts != 3 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.HealthIntervalDuration() != 250*time.Millisecond {
		t.Fatalf("health interval: %v", cfg.HealthIntervalDuration())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	// Unset fields come from Default.
	if cfg.ModelLabel != "Chompers" || cfg.DaemonBin != "ollama" || cfg.DaemonLog != "ollama.log" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","model":"m2","model_label":"Bot","rate_limit_rps":2.5,"rate_limit_burst":4,"request_timeout":"30s"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Model != "m2" || cfg.ModelLabel != "Bot" || cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.RequestTimeoutDuration() != 30*time.Second {
		t.Fatalf("request timeout: %v", cfg.RequestTimeoutDuration())
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ndaemon_bin=\"/opt/ollama\"\ndaemon_host=\"0.0.0.0\"\nlog_format=\"json\"\ncors_enabled=true\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.DaemonBin != "/opt/ollama" || cfg.DaemonHost != "0.0.0.0" || cfg.LogFormat != "json" || !cfg.CORSEnabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.HealthIntervalDuration() != time.Second || cfg.CatalogCacheTTLDuration() != 10*time.Second {
		t.Fatalf("unexpected default durations: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty model":       func(c *Config) { c.Model = "  " },
		"zero attempts":     func(c *Config) { c.HealthAttempts = 0 },
		"negative attempts": func(c *Config) { c.HealthAttempts = -1 },
		"bad interval":      func(c *Config) { c.HealthInterval = "soon" },
		"zero interval":     func(c *Config) { c.HealthInterval = "0s" },
		"port":              func(c *Config) { c.DaemonPort = 70000 },
		"timeout":           func(c *Config) { c.RequestTimeout = "x" },
		"rate":              func(c *Config) { c.RateLimitRPS = -1 },
		"log format":        func(c *Config) { c.LogFormat = "xml" },
		"exporter":          func(c *Config) { c.TraceExporter = "jaeger" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
