// Package gemini implements ports.Completer on top of the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/aretw0/mathsolver/pkg/domain"
)

const providerName = "gemini"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Config configures the Gemini adapter.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements ports.Completer for Gemini.
type Client struct {
	client *genai.Client
	model  string
	temp   float32
	logger *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Gemini completer.
// A missing API key is not an error: the client is created and every call fails
// with a ProviderError, so the process can still start and report its health.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		model:  strings.TrimSpace(cfg.Model),
		temp:   cfg.Temperature,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.APIKey == "" {
		c.logger.Warn("Gemini API key not configured; completions will fail")
		return c, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.client = client
	return c, nil
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.client != nil
}

// Model returns the model name used for completions.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", &domain.ProviderError{Provider: providerName, Message: "API key is not configured"}
	}
	if err := ctx.Err(); err != nil {
		return "", &domain.ProviderError{Provider: providerName, Message: "request aborted", Err: err}
	}

	var config *genai.GenerateContentConfig
	if c.temp > 0 {
		config = &genai.GenerateContentConfig{Temperature: genai.Ptr(c.temp)}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		c.logger.Debug("Gemini generate failed", "model", c.model, "error", err)
		return "", &domain.ProviderError{Provider: providerName, Message: "generate content failed", Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &domain.ProviderError{Provider: providerName, Message: "empty completion"}
	}
	return text, nil
}
