// Package gemini adapts the Google Gen AI SDK to the worker's Generator port.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

const (
	// DefaultModel is the model the worker writes articles with
	DefaultModel   = "gemini-2.5-flash"
	defaultTimeout = 120 * time.Second
)

// Config holds generation client settings
type Config struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	QuotaRetryDelay time.Duration
}

// contentModels is the slice of genai.Models the client calls
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates article text with a Gemini model
type Client struct {
	models          contentModels
	model           string
	timeout         time.Duration
	quotaRetryDelay time.Duration
	logger          *slog.Logger
}

// NewClient creates a Gemini API client bound to one API key
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newClient(sdk.Models, cfg, logger), nil
}

func newClient(models contentModels, cfg Config, logger *slog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	quotaDelay := cfg.QuotaRetryDelay
	if quotaDelay <= 0 {
		quotaDelay = domain.DefaultQuotaRetryDelay
	}

	return &Client{
		models:          models,
		model:           model,
		timeout:         timeout,
		quotaRetryDelay: quotaDelay,
		logger:          logger,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends the prompt and returns the raw response text.
// Errors are classified into domain.CredentialRejectedError,
// domain.RateLimitedError or domain.GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(callCtx, c.model, genai.Text(prompt), nil)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", Classify(err, c.quotaRetryDelay)
	}

	if resp == nil {
		return "", nil
	}

	text := resp.Text()
	c.logger.Debug("Gemini response received",
		slog.String("model", c.model),
		slog.Duration("latency", time.Since(start)),
		slog.Int("response_chars", len(text)),
	)

	return text, nil
}
