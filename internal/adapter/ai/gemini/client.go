// Package gemini implements the text generation port on top of the Google
// Gemini API via google.golang.org/genai.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/tokencount"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// Client wraps a genai client as a domain.TextGenerator. A Client constructed
// without an API key is a valid unconfigured instance: Configured reports
// false and Generate fails with ErrNotConfigured.
type Client struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
	counter *tokencount.Counter
}

// New constructs a Gemini client. An empty apiKey yields an unconfigured
// client rather than an error, so the server can start without credentials
// and report the condition per request.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	c := &Client{model: model, timeout: timeout, counter: tokencount.NewCounter()}
	if apiKey == "" {
		slog.Warn("gemini api key missing; text generation disabled")
		return c, nil
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	c.cli = cli
	return c, nil
}

// Configured reports whether an API key was present at construction.
func (c *Client) Configured() bool { return c.cli != nil }

// Generate sends the prompt and returns the trimmed completion text.
func (c *Client) Generate(ctx domain.Context, prompt string) (string, error) {
	if c.cli == nil {
		return "", fmt.Errorf("%w: gemini api key missing", domain.ErrNotConfigured)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.cli.Models.GenerateContent(callCtx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	})
	observability.ObserveAICall("gemini", "generate", start)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %v", domain.ErrUpstream, err)
	}
	text := strings.TrimSpace(resp.Text())

	usage := c.counter.CalculateUsage(prompt, text, c.model)
	observability.LoggerFromContext(ctx).Debug("gemini completion",
		slog.String("model", c.model),
		slog.Int("prompt_tokens", usage.PromptTokens),
		slog.Int("completion_tokens", usage.CompletionTokens),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}
