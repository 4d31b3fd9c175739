package chat

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"llmchat/internal/ollama"
)

const (
	// DefaultLabel is the display name returned with every answer.
	DefaultLabel = "Chompers"
	// FallbackText is returned when the daemon omits the generated text.
	FallbackText = "Sorry, I could not generate a response."

	msgEmptyInput  = "Empty message"
	msgUnreachable = "Failed to connect to Ollama. Is Ollama running?"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "llmchat",
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Chat requests by outcome",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (ollama.GenerateResponse, error)
}

// Response is a successful chat answer.
type Response struct {
	Text  string
	Label string
}

// Pipeline turns a user prompt into a cleaned model answer. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	gen    Generator
	model  string
	label  string
	logger zerolog.Logger
}

// NewPipeline returns a Pipeline that asks gen for completions from model and
// labels answers with label (DefaultLabel when empty).
func NewPipeline(gen Generator, model, label string, logger zerolog.Logger) *Pipeline {
	if label == "" {
		label = DefaultLabel
	}
	return &Pipeline{gen: gen, model: model, label: label, logger: logger}
}

// Model is the daemon-side model identifier.
func (p *Pipeline) Model() string { return p.model }

// Label is the display name attached to answers.
func (p *Pipeline) Label() string { return p.label }

// Chat sends prompt unmodified to the daemon and returns the cleaned answer.
// Errors are always *Error.
func (p *Pipeline) Chat(ctx context.Context, prompt string) (Response, error) {
	if strings.TrimSpace(prompt) == "" {
		requestsTotal.WithLabelValues(string(KindEmptyInput)).Inc()
		return Response{}, &Error{Kind: KindEmptyInput, Message: msgEmptyInput}
	}
	res, err := p.gen.Generate(ctx, p.model, prompt)
	if err != nil {
		ce := &Error{Kind: KindInternal, Message: err.Error(), Err: err}
		if ollama.IsUnreachable(err) {
			ce.Kind = KindDaemonUnreachable
			ce.Message = msgUnreachable
		}
		requestsTotal.WithLabelValues(string(ce.Kind)).Inc()
		p.logger.Error().Err(err).Str("kind", string(ce.Kind)).Str("model", p.model).Msg("chat failed")
		return Response{}, ce
	}
	text := FallbackText
	if res.Response != nil {
		text = *res.Response
	} else {
		p.logger.Warn().Str("model", p.model).Msg("generate response missing text; using fallback")
	}
	requestsTotal.WithLabelValues("ok").Inc()
	return Response{Text: Clean(text), Label: p.label}, nil
}
