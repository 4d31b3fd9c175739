package supervisor

import (
	"sync"

	"github.com/rs/zerolog"
)

// Event names published by the supervisor.
const (
	EventInstallOK      = "install_ok"
	EventInstallMissing = "install_missing"
	EventDaemonRunning  = "daemon_running"
	EventSpawnStart     = "spawn_start"
	EventSpawnFailed    = "spawn_failed"
	EventHealthWait     = "health_wait"
	EventDaemonReady    = "daemon_ready"
	EventHealthFailed   = "health_failed"
	EventModelPresent   = "model_present"
	EventModelMissing   = "model_missing"
	EventCatalogFailed  = "catalog_query_failed"
	EventPullStart      = "pull_start"
	EventPullProgress   = "pull_progress"
	EventPullDone       = "pull_done"
	EventPullFailed     = "pull_failed"
	EventShutdown       = "shutdown"
	EventShutdownFailed = "shutdown_failed"
	EventDaemonExited   = "daemon_exited"
)

// Event represents a supervisor lifecycle event.
// Minimal and stable: name + model and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// EventPublisher receives events from the supervisor. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans an event out to several publishers in order.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}

// LogPublisher writes events to a zerolog logger. Pull progress goes to debug,
// failures to warn and everything else to info.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher { return &LogPublisher{logger: logger} }

func (p *LogPublisher) Publish(e Event) {
	var ev *zerolog.Event
	switch e.Name {
	case EventPullProgress, EventHealthWait:
		ev = p.logger.Debug()
	case EventInstallMissing, EventSpawnFailed, EventHealthFailed, EventCatalogFailed,
		EventPullFailed, EventShutdownFailed, EventDaemonExited:
		ev = p.logger.Warn()
	default:
		ev = p.logger.Info()
	}
	if e.Model != "" {
		ev = ev.Str("model", e.Model)
	}
	ev.Fields(e.Fields).Str("event", e.Name).Msg("supervisor event")
}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the event names in publish order.
func (p *MemoryPublisher) Names() []string {
	evs := p.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Name
	}
	return out
}
