package supervisor

import (
	"sync"
	"time"
)

// HealthState is the readiness of the daemon as observed through its control API.
type HealthState string

const (
	HealthUnknown  HealthState = "unknown"
	HealthDown     HealthState = "down"
	HealthStarting HealthState = "starting"
	HealthReady    HealthState = "ready"
	HealthFailed   HealthState = "failed"
)

// Phase is the position of the Orchestrator in its startup sequence.
type Phase string

const (
	PhaseNotStarted      Phase = "not_started"
	PhaseCheckingInstall Phase = "checking_install"
	PhaseCheckingDaemon  Phase = "checking_daemon"
	PhaseAlreadyRunning  Phase = "already_running"
	PhaseSpawning        Phase = "spawning"
	PhaseAwaitingHealth  Phase = "awaiting_health"
	PhaseCheckingModel   Phase = "checking_model"
	PhaseHaveModel       Phase = "have_model"
	PhasePulling         Phase = "pulling"
	PhaseReady           Phase = "ready"
	PhaseFailed          Phase = "failed"
)

var allPhases = []Phase{
	PhaseNotStarted, PhaseCheckingInstall, PhaseCheckingDaemon, PhaseAlreadyRunning,
	PhaseSpawning, PhaseAwaitingHealth, PhaseCheckingModel, PhaseHaveModel,
	PhasePulling, PhaseReady, PhaseFailed,
}

// Terminal reports whether no further transitions follow p.
func (p Phase) Terminal() bool { return p == PhaseReady || p == PhaseFailed }

// DaemonHandle identifies a daemon process spawned by this process. A nil
// handle means the daemon was already running and is not ours to stop.
type DaemonHandle struct {
	PID       int
	PGID      int
	StartedAt time.Time
	LogPath   string

	done    chan struct{}
	mu      sync.Mutex
	exitErr error
}

func newDaemonHandle(pid int, logPath string) *DaemonHandle {
	return &DaemonHandle{PID: pid, PGID: pid, StartedAt: time.Now(), LogPath: logPath, done: make(chan struct{})}
}

func (h *DaemonHandle) markExited(err error) {
	h.mu.Lock()
	h.exitErr = err
	h.mu.Unlock()
	close(h.done)
}

// Exited reports whether the daemon process has been reaped.
func (h *DaemonHandle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done is closed once the daemon process exits.
func (h *DaemonHandle) Done() <-chan struct{} { return h.done }

// ExitErr returns the wait error once the process has exited.
func (h *DaemonHandle) ExitErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}

// PullOutcome is the result of a model download. ExitCode 0 with a nil Err is
// success; a start failure carries ExitCode -1.
type PullOutcome struct {
	ExitCode int
	Err      error
}

// Success reports whether the pull completed cleanly.
func (o PullOutcome) Success() bool { return o.ExitCode == 0 && o.Err == nil }

// ProgressSink receives each output line of a model pull, unmodified.
type ProgressSink func(line string)
