// Package console renders startup progress and supervisor events for a human
// watching the terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"llmchat/internal/supervisor"
)

var (
	colorOK    = lipgloss.Color("#2ECC71")
	colorWarn  = lipgloss.Color("#F4D03F")
	colorError = lipgloss.Color("#E74C3C")
	colorInfo  = lipgloss.Color("#3498DB")
)

// Printer writes styled lines to a terminal. Colors are dropped when the
// destination is not a terminal. It implements supervisor.EventPublisher.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	info  lipgloss.Style
	bold  lipgloss.Style
	panel lipgloss.Style
	title lipgloss.Style
}

// New returns a Printer writing to w (stdout when nil).
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:    w,
		ok:   r.NewStyle().Foreground(colorOK),
		warn: r.NewStyle().Foreground(colorWarn),
		fail: r.NewStyle().Foreground(colorError),
		info: r.NewStyle().Foreground(colorInfo),
		bold: r.NewStyle().Bold(true),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorInfo).
			Padding(0, 1),
		title: r.NewStyle().Bold(true).Foreground(colorInfo),
	}
}

func (p *Printer) line(s lipgloss.Style, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s.Render(text))
}

// Banner prints the startup panel.
func (p *Printer) Banner(title string) {
	p.line(p.panel, p.title.Render("Starting")+"\n"+title)
}

// Serving announces the chat server address.
func (p *Printer) Serving(url string) {
	p.line(p.ok, "\nStarting web server on "+url)
	p.line(p.bold, "Press Ctrl+C to stop the application\n")
}

// SetupFailed reports a fatal startup error. Errors whose supervisor event
// already printed the same message are not repeated.
func (p *Printer) SetupFailed(err error) {
	if err != nil && !announced(err) {
		p.line(p.fail, err.Error())
	}
	p.line(p.fail, "Setup failed. Exiting.")
}

func announced(err error) bool {
	return supervisor.IsMissingExecutable(err) || supervisor.IsSpawnError(err) || supervisor.IsHealthTimeout(err)
}

// ShuttingDown is printed when a stop signal arrives.
func (p *Printer) ShuttingDown() { p.line(p.warn, "\nShutting down...") }

// Error prints a runtime error.
func (p *Printer) Error(err error) { p.line(p.fail, "\nError: "+err.Error()) }

// Stopped is the last line of a run.
func (p *Printer) Stopped() { p.line(p.ok, "Application stopped successfully") }

// Publish renders a supervisor event. Unknown events are ignored.
func (p *Printer) Publish(ev supervisor.Event) {
	switch ev.Name {
	case supervisor.EventInstallOK:
		p.line(p.ok, "✓ Ollama is installed")
	case supervisor.EventInstallMissing:
		p.line(p.fail, "Ollama is not installed. Please install it from https://ollama.com")
	case supervisor.EventDaemonRunning:
		p.line(p.ok, "✓ Ollama server is already running")
	case supervisor.EventSpawnStart:
		p.line(p.warn, "Starting Ollama server...")
	case supervisor.EventSpawnFailed:
		p.line(p.fail, fmt.Sprintf("Error starting Ollama server: %v", ev.Fields["error"]))
	case supervisor.EventHealthWait:
		p.line(p.warn, "Waiting for Ollama server to start...")
	case supervisor.EventDaemonReady:
		p.line(p.ok, "✓ Ollama server is running")
	case supervisor.EventHealthFailed:
		p.line(p.fail, "Failed to start Ollama server after multiple attempts")
	case supervisor.EventCatalogFailed:
		p.line(p.fail, fmt.Sprintf("Error checking model existence: %v", ev.Fields["error"]))
	case supervisor.EventModelPresent:
		p.line(p.ok, fmt.Sprintf("✓ Model '%s' is available", ev.Model))
	case supervisor.EventModelMissing:
		p.line(p.warn, fmt.Sprintf("Model '%s' not found locally", ev.Model))
	case supervisor.EventPullStart:
		p.line(p.warn, fmt.Sprintf("Downloading model '%s'...", ev.Model))
		p.line(p.warn, "This might take several minutes depending on your internet speed.")
	case supervisor.EventPullProgress:
		line, _ := ev.Fields["line"].(string)
		if line = strings.TrimSpace(line); line != "" {
			p.line(p.info, "  "+line)
		}
	case supervisor.EventPullDone:
		p.line(p.ok, fmt.Sprintf("✓ Model '%s' downloaded successfully", ev.Model))
	case supervisor.EventPullFailed:
		p.line(p.fail, fmt.Sprintf("Failed to download model '%s'", ev.Model))
	case supervisor.EventShutdown:
		p.line(p.warn, "Ollama server stopped")
	case supervisor.EventShutdownFailed:
		p.line(p.fail, fmt.Sprintf("Error stopping Ollama server: %v", ev.Fields["error"]))
	}
}
