package supervisor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"llmchat/internal/ollama"
)

// fakeLister returns a fixed model list or error and counts calls.
type fakeLister struct {
	mu     sync.Mutex
	models []ollama.ModelEntry
	err    error
	// readyAfter makes the first readyAfter calls fail.
	readyAfter int
	calls      int
}

func (f *fakeLister) ListModels(ctx context.Context) ([]ollama.ModelEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.readyAfter {
		return nil, &ollama.UnreachableError{Op: "list", Err: errors.New("connection refused")}
	}
	return append([]ollama.ModelEntry(nil), f.models...), nil
}

func (f *fakeLister) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProbe struct{ exists bool }

func (p fakeProbe) Exists(string) bool { return p.exists }

type fakeSpawner struct {
	spawnErr     error
	terminateErr error
	spawns       int
	terminated   []*DaemonHandle
}

func (s *fakeSpawner) Spawn(ctx context.Context) (*DaemonHandle, error) {
	s.spawns++
	if s.spawnErr != nil {
		return nil, &SpawnError{Err: s.spawnErr}
	}
	return newDaemonHandle(4242, "ollama.log"), nil
}

func (s *fakeSpawner) Terminate(h *DaemonHandle) error {
	s.terminated = append(s.terminated, h)
	return s.terminateErr
}

type fakeHealth struct {
	initial HealthState
	poll    HealthState
	checks  int
	polls   int
}

func (h *fakeHealth) Check(ctx context.Context) HealthState {
	h.checks++
	return h.initial
}

func (h *fakeHealth) PollUntilReady(ctx context.Context, attempts int, interval time.Duration) HealthState {
	h.polls++
	return h.poll
}

type fakeCatalog struct {
	present   bool
	lookupErr error
	outcome   PullOutcome
	lines     []string
	pulls     int
}

func (c *fakeCatalog) Lookup(ctx context.Context, name string) (bool, error) {
	return c.present, c.lookupErr
}

func (c *fakeCatalog) Pull(ctx context.Context, name string, sink ProgressSink) PullOutcome {
	c.pulls++
	for _, l := range c.lines {
		sink(l)
	}
	return c.outcome
}

// writeScript writes an executable shell script into a temp dir and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}
