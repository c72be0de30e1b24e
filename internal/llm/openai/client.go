package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"docqa-backend/internal/llm"
	"docqa-backend/internal/shared/telemetry"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
)

// Options configures the OpenAI client. BaseURL targets OpenAI-compatible servers.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements llm.Generator using OpenAI Chat Completions.
type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient constructs a new OpenAI client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
		if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				timeout = time.Duration(parsed) * time.Second
			}
		}
	}

	cfg := goopenai.DefaultConfig(opts.APIKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{client: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

// GenerateAnswer sends the document context and question as a single user message.
func (c *Client) GenerateAnswer(ctx context.Context, documentContext string, question string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildPrompt(documentContext, question)},
		},
	}
	if supportsTemperature(c.model) {
		req.Temperature = defaultTemperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil && req.Temperature != 0 && isTemperatureUnsupported(err) {
		telemetry.Warn("openai.temperature_retry", map[string]any{"model": c.model})
		req.Temperature = 0
		resp, err = c.client.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", fmt.Errorf("openai chat completion model=%s: %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content: %w", llm.ErrEmptyAnswer)
	}
	telemetry.Info("llm.response", map[string]any{
		"provider":         "openai",
		"model":            c.model,
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	})
	return content, nil
}

// supportsTemperature reports whether a non-default temperature may be sent.
// LLM_NO_TEMP0_MODELS lists extra models (comma separated) that only accept the default.
func supportsTemperature(model string) bool {
	if isGPT5(model) || isReasoningModel(model) {
		return false
	}
	for _, m := range strings.Split(os.Getenv("LLM_NO_TEMP0_MODELS"), ",") {
		if strings.EqualFold(strings.TrimSpace(m), model) {
			return false
		}
	}
	return true
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, p := range []string{"o1", "o3", "o4"} {
		if m == p || strings.HasPrefix(m, p+"-") {
			return true
		}
	}
	return false
}

func isTemperatureUnsupported(err error) bool {
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HTTPStatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "temperature")
}

var _ llm.Generator = (*Client)(nil)
