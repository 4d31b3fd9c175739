package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"llmchat/internal/config"
)

// Version is set at build time with -ldflags "-X llmchat/internal/cli.Version=...".
var Version = "dev"

// options are the raw command line values; they override the config file
// only when the flag was given.
type options struct {
	configPath string
	addr       string
	model      string
	label      string
	daemonBin  string
	daemonHost string
	daemonPort int
	daemonLog  string
	logLevel   string
	logFormat  string
	traceExp   string
	corsOrigin string
	rateRPS    float64
	rateBurst  int
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var shown shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func buildRootCmd(stdout io.Writer) *cobra.Command {
	var o options
	root := &cobra.Command{
		Use:           "llmchat",
		Short:         "Chat with a local Ollama model in the browser",
		Long:          "llmchat makes sure Ollama and the configured model are available, then serves a chat page and POST /chat.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", envStr("LLMCHAT_CONFIG", ""), "Config file (.yaml, .json or .toml; defaults LLMCHAT_CONFIG)")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error|off")
	pf.StringVar(&o.logFormat, "log-format", "", "Log format: auto|console|json")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Prepare the daemon and model, then serve the chat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, stdout)
		},
	}
	f := serve.Flags()
	f.StringVar(&o.addr, "addr", envStr("LLMCHAT_ADDR", ":5000"), "HTTP listen address (defaults LLMCHAT_ADDR or :5000)")
	f.StringVar(&o.model, "model", "", "Model to ensure and chat with")
	f.StringVar(&o.label, "label", "", "Display name returned with answers")
	f.StringVar(&o.daemonBin, "daemon-bin", "", "Ollama executable")
	f.StringVar(&o.daemonHost, "daemon-host", "", "Ollama listen host")
	f.IntVar(&o.daemonPort, "daemon-port", envInt("OLLAMA_PORT", 11434), "Ollama listen port (defaults OLLAMA_PORT or 11434)")
	f.StringVar(&o.daemonLog, "daemon-log", "", "File receiving the output of a spawned Ollama")
	f.StringVar(&o.traceExp, "trace-exporter", "", "Trace exporter: none|stdout")
	f.StringVar(&o.corsOrigin, "cors-origins", "", "Comma separated CORS origins; enables CORS when set")
	f.Float64Var(&o.rateRPS, "rate-limit-rps", 0, "Max chat requests per second (0 disables)")
	f.IntVar(&o.rateBurst, "rate-limit-burst", 0, "Chat request burst size")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "llmchat", Version)
			return err
		},
	}

	root.AddCommand(serve, version)
	// Bare `llmchat` serves.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

// resolveConfig loads the config file (if any), applies defaults and then the
// flags that were set explicitly.
func resolveConfig(cmd *cobra.Command, o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", o.configPath, err)
		}
		cfg = loaded
	}
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("addr") || (o.configPath == "" && os.Getenv("LLMCHAT_ADDR") != "") {
		cfg.Addr = o.addr
	}
	if changed("model") {
		cfg.Model = o.model
	}
	if changed("label") {
		cfg.ModelLabel = o.label
	}
	if changed("daemon-bin") {
		cfg.DaemonBin = o.daemonBin
	}
	if changed("daemon-host") {
		cfg.DaemonHost = o.daemonHost
	}
	if changed("daemon-port") || (o.configPath == "" && os.Getenv("OLLAMA_PORT") != "") {
		cfg.DaemonPort = o.daemonPort
	}
	if changed("daemon-log") {
		cfg.DaemonLog = o.daemonLog
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if changed("trace-exporter") {
		cfg.TraceExporter = o.traceExp
	}
	if changed("cors-origins") {
		cfg.CORSOrigins = splitCSV(o.corsOrigin)
		cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
	}
	if changed("rate-limit-rps") {
		cfg.RateLimitRPS = o.rateRPS
	}
	if changed("rate-limit-burst") {
		cfg.RateLimitBurst = o.rateBurst
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
