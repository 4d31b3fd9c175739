package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ModelCatalog answers which models the daemon has installed and downloads
// missing ones through the daemon executable.
type ModelCatalog struct {
	lister    ModelLister
	cfg       Config
	logger    zerolog.Logger
	publisher EventPublisher
}

// NewModelCatalog constructs a catalog backed by lister for queries and by the
// configured daemon binary for pulls.
func NewModelCatalog(lister ModelLister, cfg Config, logger zerolog.Logger) *ModelCatalog {
	return &ModelCatalog{lister: lister, cfg: cfg.withDefaults(), logger: logger, publisher: noopPublisher{}}
}

func (c *ModelCatalog) setPublisher(pub EventPublisher) {
	if pub == nil {
		c.publisher = noopPublisher{}
		return
	}
	c.publisher = pub
}

// ListInstalled returns the set of installed model identifiers. Query and
// decoding failures are returned as *CatalogQueryError.
func (c *ModelCatalog) ListInstalled(ctx context.Context) (map[string]struct{}, error) {
	models, err := c.lister.ListModels(ctx)
	if err != nil {
		return nil, &CatalogQueryError{Err: err}
	}
	set := make(map[string]struct{}, len(models)*2)
	for _, m := range models {
		if m.Name != "" {
			set[m.Name] = struct{}{}
		}
		if m.Model != "" {
			set[m.Model] = struct{}{}
		}
	}
	return set, nil
}

// Lookup reports whether name is installed, keeping a failed query distinct
// from a missing model.
func (c *ModelCatalog) Lookup(ctx context.Context, name string) (bool, error) {
	set, err := c.ListInstalled(ctx)
	if err != nil {
		return false, err
	}
	_, ok := set[name]
	return ok, nil
}

// Contains reports whether name is installed. A failed query counts as absent;
// the failure is logged and published rather than returned.
func (c *ModelCatalog) Contains(ctx context.Context, name string) bool {
	ok, err := c.Lookup(ctx, name)
	if err != nil {
		c.logger.Warn().Err(err).Str("model", name).Msg("model catalog query failed; treating model as absent")
		c.publisher.Publish(Event{Name: EventCatalogFailed, Model: name, Fields: map[string]any{"error": err.Error()}})
		return false
	}
	return ok
}

// Pull downloads name with `<bin> pull <name>`, forwarding every output line
// to sink, and blocks until the child exits.
func (c *ModelCatalog) Pull(ctx context.Context, name string, sink ProgressSink) PullOutcome {
	stream, err := c.StartPull(ctx, name)
	if err != nil {
		modelPullsTotal.WithLabelValues("error").Inc()
		return PullOutcome{ExitCode: -1, Err: err}
	}
	for line := range stream.Lines() {
		if sink != nil {
			sink(line)
		}
	}
	code, werr := stream.Wait()
	out := PullOutcome{ExitCode: code, Err: werr}
	if out.Success() {
		modelPullsTotal.WithLabelValues("ok").Inc()
	} else {
		modelPullsTotal.WithLabelValues("fail").Inc()
	}
	c.logger.Debug().Str("model", name).Int("exit_code", code).Msg("pull finished")
	return out
}

// PullStream is a running model download whose combined stdout/stderr is
// consumed through Lines.
type PullStream struct {
	cmd      *exec.Cmd
	out      io.ReadCloser
	consumed atomic.Bool
	readErr  error
}

// StartPull launches the download child process. The caller must drain Lines
// and then call Wait.
func (c *ModelCatalog) StartPull(ctx context.Context, name string) (*PullStream, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pull pipe: %w", err)
	}
	cmd := exec.CommandContext(ctx, c.cfg.DaemonBin, "pull", name)
	cmd.Env = append(os.Environ(), "OLLAMA_HOST="+c.cfg.hostEnv())
	// One descriptor for both streams keeps their relative order.
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("start pull: %w", err)
	}
	// Only the child holds the write end now, so reads see EOF when it exits.
	_ = pw.Close()
	return &PullStream{cmd: cmd, out: pr}, nil
}

// Lines yields the child's output one line at a time, without terminators.
// The sequence ends when the output stream closes and can be ranged over once;
// later iterations yield nothing.
func (s *PullStream) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			return
		}
		sc := bufio.NewScanner(s.out)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		sc.Split(scanProgressLines)
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			s.readErr = fmt.Errorf("read pull output: %w", err)
			// Keep the pipe drained so the child can run to completion.
			_, _ = io.Copy(io.Discard, s.out)
		}
	}
}

// Wait closes the output, waits for the child and returns its exit code.
// Output not yet read is discarded. A failure reading the output is returned
// alongside the exit code.
func (s *PullStream) Wait() (int, error) {
	_ = s.out.Close()
	err := s.cmd.Wait()
	if err == nil {
		return 0, s.readErr
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), s.readErr
	}
	return -1, err
}

// scanProgressLines splits on '\n', '\r' or "\r\n". Progress bars redraw with a
// bare carriage return, and each redraw is its own line.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// Need one more byte to tell "\r" from "\r\n".
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
