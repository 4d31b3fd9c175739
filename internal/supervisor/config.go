package supervisor

import (
	"fmt"
	"time"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultDaemonBin      = "ollama"
	DefaultDaemonHost     = "127.0.0.1"
	DefaultDaemonPort     = 11434
	DefaultDaemonLog      = "ollama.log"
	DefaultModel          = "deepseek-r1:7b"
	DefaultHealthAttempts = 10
	DefaultHealthInterval = 1 * time.Second

	defaultProbeTimeout   = 2 * time.Second
	defaultTerminateGrace = 5 * time.Second
)

// Config encapsulates the tunables of the supervisor.
type Config struct {
	DaemonBin      string
	DaemonHost     string
	DaemonPort     int
	DaemonLog      string
	Model          string
	HealthAttempts int
	HealthInterval time.Duration
	// ProbeTimeout bounds a single control API call during health checks.
	ProbeTimeout time.Duration
	// TerminateGrace is how long Terminate waits after SIGTERM before SIGKILL.
	TerminateGrace time.Duration
}

// withDefaults returns a copy of cfg with zero values replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.DaemonBin == "" {
		cfg.DaemonBin = DefaultDaemonBin
	}
	if cfg.DaemonHost == "" {
		cfg.DaemonHost = DefaultDaemonHost
	}
	if cfg.DaemonPort <= 0 {
		cfg.DaemonPort = DefaultDaemonPort
	}
	if cfg.DaemonLog == "" {
		cfg.DaemonLog = DefaultDaemonLog
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HealthAttempts <= 0 {
		cfg.HealthAttempts = DefaultHealthAttempts
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.TerminateGrace <= 0 {
		cfg.TerminateGrace = defaultTerminateGrace
	}
	return cfg
}

// BaseURL is the control API endpoint of the daemon.
func (cfg Config) BaseURL() string {
	cfg = cfg.withDefaults()
	return fmt.Sprintf("http://%s:%d", cfg.DaemonHost, cfg.DaemonPort)
}

// hostEnv is the OLLAMA_HOST value handed to a spawned daemon.
func (cfg Config) hostEnv() string {
	return fmt.Sprintf("%s:%d", cfg.DaemonHost, cfg.DaemonPort)
}
