package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"llmchat/internal/app"
	"llmchat/internal/chat"
	"llmchat/internal/config"
	"llmchat/internal/console"
	"llmchat/internal/httpapi"
	"llmchat/internal/logging"
	"llmchat/internal/ollama"
	"llmchat/internal/supervisor"
	"llmchat/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// runServe prepares the daemon and model, then serves HTTP until the context
// is canceled or a stop signal arrives. A daemon started here is stopped on
// every return path.
func runServe(parent context.Context, cfg config.Config, stdout io.Writer) (err error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{ServiceName: "llmchat", ServiceVersion: Version, Exporter: cfg.TraceExporter})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if terr := shutdownTracing(sctx); terr != nil {
			logger.Warn().Err(terr).Msg("tracing shutdown")
		}
	}()

	printer := console.New(stdout)
	printer.Banner("Local LLM Chat Application")

	supCfg := supervisor.Config{
		DaemonBin:      cfg.DaemonBin,
		DaemonHost:     cfg.DaemonHost,
		DaemonPort:     cfg.DaemonPort,
		DaemonLog:      cfg.DaemonLog,
		Model:          cfg.Model,
		HealthAttempts: cfg.HealthAttempts,
		HealthInterval: cfg.HealthIntervalDuration(),
	}
	client := ollama.NewClient(supCfg.BaseURL(), cfg.RequestTimeoutDuration())
	orch := supervisor.New(supCfg, client, supervisor.Components{
		Publisher: supervisor.MultiPublisher{printer, supervisor.NewLogPublisher(logger)},
		Logger:    logger,
	})
	defer func() {
		if serr := orch.Shutdown(); serr != nil && err == nil {
			err = serr
		}
		if err == nil {
			printer.Stopped()
		}
	}()

	if err := orch.EnsureReady(ctx); err != nil {
		printer.SetupFailed(err)
		return shownError{err}
	}

	pipeline := chat.NewPipeline(client, cfg.Model, cfg.ModelLabel, logger)
	svc := app.New(pipeline, orch, client, app.Options{
		Model:     cfg.Model,
		Label:     pipeline.Label(),
		DaemonURL: client.BaseURL(),
		CacheTTL:  cfg.CatalogCacheTTLDuration(),
		Logger:    logger,
	})
	defer svc.Close()

	configureHTTP(cfg, logger)
	httpapi.SetBaseContext(ctx)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printer.Serving(displayURL(cfg.Addr))
	logger.Info().Str("addr", cfg.Addr).Str("model", cfg.Model).Msg("llmchat listening")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			printer.ShuttingDown()
		}
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		printer.Error(err)
		return shownError{err}
	}
	return nil
}

// shownError marks an error already printed on the console.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

// configureHTTP applies config to the HTTP layer's package settings.
func configureHTTP(cfg config.Config, logger zerolog.Logger) {
	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(httpLogLevel(cfg.LogLevel))
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetChatTimeout(cfg.RequestTimeoutDuration())
	httpapi.SetRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
}

// displayURL turns a listen address into something clickable.
func displayURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// httpLogLevel maps the process log level to the HTTP layer's per-request default.
func httpLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return "debug"
	case "warn", "warning", "error", "fatal", "panic":
		return "error"
	case "off", "disabled":
		return "off"
	default:
		return "info"
	}
}
