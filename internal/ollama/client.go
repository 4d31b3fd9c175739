// Package ollama is a small client for the control API of a local Ollama daemon.
// Only the two calls the supervisor and the chat pipeline need are implemented:
// listing installed models and a non-streaming generate.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is where the daemon listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:11434"

// Client talks to the daemon over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient constructs a client for baseURL. A zero requestTimeout leaves the
// deadline to the caller's context.
func NewClient(baseURL string, requestTimeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: tr, Timeout: requestTimeout},
		tracer:     otel.Tracer("llmchat/ollama"),
	}
}

// BaseURL returns the daemon endpoint this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// ModelEntry is one row of the daemon's installed model list.
type ModelEntry struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Size  int64  `json:"size,omitempty"`
}

// ID returns the identifier used for membership checks. Newer daemons report
// both fields; older ones only name.
func (m ModelEntry) ID() string {
	if m.Model != "" {
		return m.Model
	}
	return m.Name
}

type listResponse struct {
	Models *[]ModelEntry `json:"models"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse is the non-streaming generate result. Response is nil when
// the daemon omitted the field.
type GenerateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// ListModels returns the installed models (GET /api/tags). A response without a
// models array, or with an entry lacking any identifier, is a protocol error.
func (c *Client) ListModels(ctx context.Context) ([]ModelEntry, error) {
	ctx, span := c.tracer.Start(ctx, "ollama.ListModels")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("build list request: %w", err))
	}
	var body listResponse
	if err := c.do(req, "list", &body); err != nil {
		return nil, recordErr(span, err)
	}
	if body.Models == nil {
		return nil, recordErr(span, &UnreachableError{Op: "list", Err: errors.New("response has no models field")})
	}
	for i, m := range *body.Models {
		if m.ID() == "" {
			return nil, recordErr(span, &UnreachableError{Op: "list", Err: fmt.Errorf("model entry %d has no name", i)})
		}
	}
	span.SetAttributes(attribute.Int("ollama.models", len(*body.Models)))
	return *body.Models, nil
}

// Generate runs a single non-streaming completion (POST /api/generate).
func (c *Client) Generate(ctx context.Context, model, prompt string) (GenerateResponse, error) {
	ctx, span := c.tracer.Start(ctx, "ollama.Generate", trace.WithAttributes(
		attribute.String("ollama.model", model),
		attribute.Int("ollama.prompt_len", len(prompt)),
	))
	defer span.End()

	payload, err := json.Marshal(GenerateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return GenerateResponse{}, recordErr(span, fmt.Errorf("marshal generate request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, recordErr(span, fmt.Errorf("build generate request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	var out GenerateResponse
	if err := c.do(req, "generate", &out); err != nil {
		return GenerateResponse{}, recordErr(span, err)
	}
	return out, nil
}

// do executes req and decodes a 2xx JSON body into v. Transport failures,
// non-2xx statuses and undecodable bodies come back as *UnreachableError.
// Cancellation of the caller's context is returned as the context error.
func (c *Client) do(req *http.Request, op string, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		return &UnreachableError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UnreachableError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(daemonErrorText(b, resp.Status))}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UnreachableError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// daemonErrorText extracts {"error": "..."} from a daemon error body, falling
// back to the raw body or HTTP status.
func daemonErrorText(body []byte, status string) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
