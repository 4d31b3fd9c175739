package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Prober reports whether an executable is installed.
type Prober interface {
	Exists(name string) bool
}

// Spawner starts and stops the daemon process.
type Spawner interface {
	Spawn(ctx context.Context) (*DaemonHandle, error)
	Terminate(h *DaemonHandle) error
}

// Health classifies daemon readiness.
type Health interface {
	Check(ctx context.Context) HealthState
	PollUntilReady(ctx context.Context, attempts int, interval time.Duration) HealthState
}

// Catalog answers model presence and downloads missing models.
type Catalog interface {
	Lookup(ctx context.Context, name string) (bool, error)
	Pull(ctx context.Context, name string, sink ProgressSink) PullOutcome
}

// Components are the collaborators of an Orchestrator. Nil fields are built
// from the Config and the control API client passed to New.
type Components struct {
	Probe     Prober
	Process   Spawner
	Health    Health
	Catalog   Catalog
	Publisher EventPublisher
	// Logger defaults to the zero Logger, which discards everything.
	Logger zerolog.Logger
}

// Orchestrator runs the startup sequence that makes the daemon and the
// required model available, and owns the handle of a daemon it spawned.
type Orchestrator struct {
	cfg       Config
	probe     Prober
	process   Spawner
	health    Health
	catalog   Catalog
	publisher EventPublisher
	logger    zerolog.Logger

	mu         sync.Mutex
	phase      Phase
	handle     *DaemonHandle
	err        error
	terminated bool
}

// New builds an Orchestrator whose health checks and catalog queries go
// through lister. Any component set in comps overrides the default.
func New(cfg Config, lister ModelLister, comps Components) *Orchestrator {
	cfg = cfg.withDefaults()
	logger := comps.Logger
	pub := comps.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	o := &Orchestrator{cfg: cfg, publisher: pub, logger: logger, phase: PhaseNotStarted}

	o.probe = comps.Probe
	if o.probe == nil {
		o.probe = NewCommandProbe()
	}
	o.process = comps.Process
	if o.process == nil {
		dp := NewDaemonProcess(cfg, logger)
		dp.setPublisher(pub)
		o.process = dp
	}
	o.health = comps.Health
	if o.health == nil {
		hc := NewHealthChecker(lister, cfg.ProbeTimeout, logger)
		hc.setPublisher(pub)
		o.health = hc
	}
	o.catalog = comps.Catalog
	if o.catalog == nil {
		mc := NewModelCatalog(lister, cfg, logger)
		mc.setPublisher(pub)
		o.catalog = mc
	}
	setPhaseMetric(o.phase)
	return o
}

// Phase returns the current startup phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Owned reports whether this process spawned the daemon.
func (o *Orchestrator) Owned() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handle != nil
}

// Handle returns the spawned daemon handle, or nil if the daemon was found running.
func (o *Orchestrator) Handle() *DaemonHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handle
}

// Model is the required model identifier.
func (o *Orchestrator) Model() string { return o.cfg.Model }

// Err returns the error that moved the orchestrator to PhaseFailed, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Ready reports whether EnsureReady completed successfully.
func (o *Orchestrator) Ready() bool { return o.Phase() == PhaseReady }

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	prev := o.phase
	o.phase = p
	o.mu.Unlock()
	setPhaseMetric(p)
	o.logger.Debug().Str("from", string(prev)).Str("to", string(p)).Msg("supervisor phase")
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
	o.setPhase(PhaseFailed)
	o.logger.Error().Err(err).Msg("daemon setup failed")
	return err
}

func (o *Orchestrator) publish(name string, fields map[string]any) {
	o.publisher.Publish(Event{Name: name, Model: o.cfg.Model, Fields: fields})
}

// EnsureReady makes sure the daemon executable is installed, a daemon is
// serving, and the required model is present, in that order. It is meant to be
// called once at startup: after success further calls return nil; after a
// failure they return the recorded error without retrying.
func (o *Orchestrator) EnsureReady(ctx context.Context) error {
	if o.Phase().Terminal() {
		return o.Err()
	}

	o.setPhase(PhaseCheckingInstall)
	if !o.probe.Exists(o.cfg.DaemonBin) {
		o.publish(EventInstallMissing, map[string]any{"bin": o.cfg.DaemonBin})
		return o.fail(&MissingExecutableError{Name: o.cfg.DaemonBin})
	}
	o.publish(EventInstallOK, map[string]any{"bin": o.cfg.DaemonBin})

	o.setPhase(PhaseCheckingDaemon)
	if o.health.Check(ctx) == HealthReady {
		o.setPhase(PhaseAlreadyRunning)
		o.publish(EventDaemonRunning, map[string]any{"url": o.cfg.BaseURL()})
	} else {
		o.setPhase(PhaseSpawning)
		h, err := o.process.Spawn(ctx)
		if err != nil {
			return o.fail(err)
		}
		o.mu.Lock()
		o.handle = h
		o.mu.Unlock()

		o.setPhase(PhaseAwaitingHealth)
		if o.health.PollUntilReady(ctx, o.cfg.HealthAttempts, o.cfg.HealthInterval) != HealthReady {
			o.publish(EventHealthFailed, map[string]any{"attempts": o.cfg.HealthAttempts})
			return o.fail(&HealthTimeoutError{Attempts: o.cfg.HealthAttempts})
		}
		o.publish(EventDaemonReady, map[string]any{"url": o.cfg.BaseURL(), "pid": h.PID})
	}

	o.setPhase(PhaseCheckingModel)
	present, err := o.catalog.Lookup(ctx, o.cfg.Model)
	if err != nil {
		// Unreachable catalog is reported separately but still handled as a missing model.
		o.logger.Warn().Err(err).Str("model", o.cfg.Model).Msg("model catalog query failed; attempting pull")
		o.publish(EventCatalogFailed, map[string]any{"error": err.Error()})
	}
	if present {
		o.setPhase(PhaseHaveModel)
		o.publish(EventModelPresent, nil)
		o.setPhase(PhaseReady)
		return nil
	}

	o.publish(EventModelMissing, nil)
	o.setPhase(PhasePulling)
	o.publish(EventPullStart, nil)
	out := o.catalog.Pull(ctx, o.cfg.Model, func(line string) {
		o.publish(EventPullProgress, map[string]any{"line": line})
	})
	if !out.Success() {
		o.publish(EventPullFailed, map[string]any{"exit_code": out.ExitCode})
		return o.fail(&PullFailureError{Model: o.cfg.Model, ExitCode: out.ExitCode, Err: out.Err})
	}
	o.publish(EventPullDone, nil)
	o.setPhase(PhaseReady)
	return nil
}

// Shutdown terminates the daemon if this process spawned it. It runs at most
// once and is a no-op when the daemon was already running at startup.
func (o *Orchestrator) Shutdown() error {
	o.mu.Lock()
	h := o.handle
	if h == nil || o.terminated {
		o.mu.Unlock()
		return nil
	}
	o.terminated = true
	o.mu.Unlock()

	if err := o.process.Terminate(h); err != nil {
		o.logger.Error().Err(err).Int("pid", h.PID).Msg("stop daemon")
		o.publish(EventShutdownFailed, map[string]any{"pid": h.PID, "error": err.Error()})
		return err
	}
	o.logger.Info().Int("pid", h.PID).Msg("daemon stopped")
	o.publish(EventShutdown, map[string]any{"pid": h.PID})
	return nil
}
