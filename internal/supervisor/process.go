package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"llmchat/internal/common/fsutil"
)

// DaemonProcess owns the lifecycle of a spawned `<bin> serve` process.
type DaemonProcess struct {
	cfg       Config
	logger    zerolog.Logger
	publisher EventPublisher
}

// NewDaemonProcess constructs a DaemonProcess from cfg.
func NewDaemonProcess(cfg Config, logger zerolog.Logger) *DaemonProcess {
	return &DaemonProcess{cfg: cfg.withDefaults(), logger: logger, publisher: noopPublisher{}}
}

func (p *DaemonProcess) setPublisher(pub EventPublisher) {
	if pub == nil {
		p.publisher = noopPublisher{}
		return
	}
	p.publisher = pub
}

// Spawn starts the daemon detached in its own process group with stdout and
// stderr redirected to the configured log file. The process is reaped in the
// background; the returned handle reports its exit.
func (p *DaemonProcess) Spawn(ctx context.Context) (*DaemonHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SpawnError{Err: err}
	}
	logPath, err := fsutil.ExpandHome(p.cfg.DaemonLog)
	if err != nil {
		return nil, &SpawnError{Err: err}
	}
	logFile, err := fsutil.CreateLogFile(logPath)
	if err != nil {
		return nil, &SpawnError{Err: fmt.Errorf("open daemon log: %w", err)}
	}
	// The child holds its own descriptor once started.
	defer logFile.Close()

	// Not CommandContext: the daemon must outlive the startup context.
	cmd := exec.Command(p.cfg.DaemonBin, "serve")
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = append(os.Environ(), "OLLAMA_HOST="+p.cfg.hostEnv())
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		p.publisher.Publish(Event{Name: EventSpawnFailed, Fields: map[string]any{"error": err.Error()}})
		return nil, &SpawnError{Err: err}
	}

	h := newDaemonHandle(cmd.Process.Pid, logPath)
	p.logger.Info().Int("pid", h.PID).Str("bin", p.cfg.DaemonBin).Str("host", p.cfg.hostEnv()).Str("log", logPath).Msg("daemon started")
	p.publisher.Publish(Event{Name: EventSpawnStart, Fields: map[string]any{"pid": h.PID, "log": logPath}})

	go func() {
		werr := cmd.Wait()
		h.markExited(werr)
		ev := p.logger.Debug().Int("pid", h.PID)
		if werr != nil {
			ev = ev.Err(werr)
		}
		ev.Msg("daemon exited")
		p.publisher.Publish(Event{Name: EventDaemonExited, Fields: map[string]any{"pid": h.PID}})
	}()
	return h, nil
}

// Terminate sends SIGTERM to the daemon's whole process group and waits up to
// the configured grace period, then kills the group. Errors are returned for
// reporting; a group that is already gone is not an error.
func (p *DaemonProcess) Terminate(h *DaemonHandle) error {
	if h == nil {
		return nil
	}
	if err := terminateGroup(h.PGID); err != nil {
		if errors.Is(err, errProcessGone) {
			return nil
		}
		return fmt.Errorf("terminate daemon process group %d: %w", h.PGID, err)
	}
	select {
	case <-h.Done():
		return nil
	case <-time.After(p.cfg.TerminateGrace):
	}
	p.logger.Warn().Int("pid", h.PID).Dur("grace", p.cfg.TerminateGrace).Msg("daemon ignored SIGTERM; killing process group")
	if err := killGroup(h.PGID); err != nil && !errors.Is(err, errProcessGone) {
		return fmt.Errorf("kill daemon process group %d: %w", h.PGID, err)
	}
	select {
	case <-h.Done():
		return nil
	case <-time.After(p.cfg.TerminateGrace):
		return fmt.Errorf("daemon pid %d still running after kill", h.PID)
	}
}
