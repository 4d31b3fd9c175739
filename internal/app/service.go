// Package app joins the chat pipeline and the daemon supervisor into the
// service behind the HTTP API.
package app

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"

	"llmchat/internal/chat"
	"llmchat/internal/ollama"
	"llmchat/internal/supervisor"
	"llmchat/pkg/types"
)

const installedKey = "installed"

// Supervisor is the read side of the startup orchestrator.
type Supervisor interface {
	Phase() supervisor.Phase
	Handle() *supervisor.DaemonHandle
	Err() error
	Ready() bool
}

// Chatter answers a prompt.
type Chatter interface {
	Chat(ctx context.Context, prompt string) (chat.Response, error)
}

// Options describe the values reported by Status.
type Options struct {
	Model     string
	Label     string
	DaemonURL string
	// CacheTTL bounds how stale the installed model list in Status may be.
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Service implements httpapi.Service.
type Service struct {
	chat    Chatter
	sup     Supervisor
	lister  supervisor.ModelLister
	opts    Options
	cache   *ttlcache.Cache[string, []ollama.ModelEntry]
	started time.Time
}

// New builds a Service. Call Close to stop the cache janitor.
func New(c Chatter, sup Supervisor, lister supervisor.ModelLister, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Second
	}
	cache := ttlcache.New[string, []ollama.ModelEntry](
		ttlcache.WithTTL[string, []ollama.ModelEntry](opts.CacheTTL),
		ttlcache.WithDisableTouchOnHit[string, []ollama.ModelEntry](),
	)
	go cache.Start()
	return &Service{chat: c, sup: sup, lister: lister, opts: opts, cache: cache, started: time.Now()}
}

// Close stops the cache expiration loop.
func (s *Service) Close() { s.cache.Stop() }

// Chat forwards to the chat pipeline.
func (s *Service) Chat(ctx context.Context, prompt string) (chat.Response, error) {
	return s.chat.Chat(ctx, prompt)
}

// Ready reports whether startup completed.
func (s *Service) Ready() bool { return s.sup.Ready() }

// Status summarizes the supervisor and the daemon's installed models. A
// failed catalog query is reported in Error and not cached.
func (s *Service) Status(ctx context.Context) types.StatusResponse {
	now := time.Now()
	out := types.StatusResponse{
		Phase:          string(s.sup.Phase()),
		Model:          s.opts.Model,
		Label:          s.opts.Label,
		DaemonURL:      s.opts.DaemonURL,
		Installed:      []types.InstalledModel{},
		UptimeSeconds:  int64(now.Sub(s.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	if h := s.sup.Handle(); h != nil {
		out.Owned = true
		out.PID = h.PID
	}
	if err := s.sup.Err(); err != nil {
		out.Error = err.Error()
	}

	models, err := s.installed(ctx)
	if err != nil {
		s.opts.Logger.Warn().Err(err).Msg("status: list installed models")
		if out.Error == "" {
			out.Error = err.Error()
		}
		return out
	}
	for _, m := range models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		out.Installed = append(out.Installed, types.InstalledModel{Name: name, Size: m.Size})
	}
	return out
}

func (s *Service) installed(ctx context.Context) ([]ollama.ModelEntry, error) {
	if item := s.cache.Get(installedKey); item != nil {
		return item.Value(), nil
	}
	models, err := s.lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(installedKey, models, ttlcache.DefaultTTL)
	return models, nil
}
