// Package llm is the HTTP client for the text-generation collaborator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/okian/practiceplan/pkg/logger"
	"github.com/okian/practiceplan/pkg/metrics"
)

const (
	messagesPath = "/v1/messages"

	// maxResponseBytes bounds how much of a reply body is read.
	maxResponseBytes = 8 << 20
)

// Config holds the collaborator connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	APIVersion string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client calls the messages endpoint. It is safe for concurrent use.
type Client struct {
	cfg  Config
	url  string
	http *http.Client
	log  logger.Logger
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	switch {
	case base == "":
		return nil, fmt.Errorf("%w: base_url", ErrMissingConfig)
	case strings.TrimSpace(cfg.Model) == "":
		return nil, fmt.Errorf("%w: model", ErrMissingConfig)
	case cfg.MaxTokens <= 0:
		return nil, fmt.Errorf("%w: max_tokens", ErrMissingConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	c := &Client{
		cfg: cfg,
		url: base + messagesPath,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("llm")
	}
	return c, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
}

// Generate sends one user message and returns the first text block of the
// reply. A reply without a text block yields an empty string.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	tracer := otel.Tracer("llm/Generate")
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.cfg.Model),
		attribute.Int("llm.max_tokens", c.cfg.MaxTokens),
		attribute.Int("llm.prompt_bytes", len(systemPrompt)+len(userPrompt)),
	)

	start := time.Now()
	text, err := c.do(ctx, messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: userPrompt}},
	})
	latency := time.Since(start)
	metrics.RecordGenerationLatency(float64(latency.Milliseconds()))

	if err != nil {
		kind := Kind(err)
		metrics.RecordGenerationError(kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		c.log.Debug(ctx, "generation failed",
			logger.String("kind", kind),
			logger.Int("latency_ms", int(latency.Milliseconds())),
			logger.Error(err))
		return "", err
	}

	span.SetAttributes(attribute.Int("llm.reply_bytes", len(text)))
	c.log.Debug(ctx, "generation complete",
		logger.Int("latency_ms", int(latency.Milliseconds())),
		logger.Int("reply_bytes", len(text)))
	return text, nil
}

func (c *Client) do(ctx context.Context, body messagesRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("anthropic-version", c.cfg.APIVersion)
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", parseAPIError(resp.StatusCode, raw)
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	for _, block := range out.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
