package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docqa-backend/internal/llm"
	"docqa-backend/internal/shared/telemetry"
)

const defaultModel = "gemini-2.0-flash-lite"

// Client implements llm.Generator using the Gemini API.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient constructs a Gemini client for modelName (defaults to a flash-lite model).
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
	}, nil
}

// GenerateAnswer sends a single-turn prompt built from the document context and question.
func (c *Client) GenerateAnswer(ctx context.Context, documentContext string, question string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(llm.BuildPrompt(documentContext, question)))
	if err != nil {
		return "", fmt.Errorf("gemini generate model=%s: %w", c.modelName, err)
	}

	answer := responseText(resp)
	if answer == "" {
		return "", fmt.Errorf("gemini model=%s: %w", c.modelName, llm.ErrEmptyAnswer)
	}
	if resp.UsageMetadata != nil {
		telemetry.Info("llm.response", map[string]any{
			"provider":         "gemini",
			"model":            c.modelName,
			"promptTokens":     resp.UsageMetadata.PromptTokenCount,
			"completionTokens": resp.UsageMetadata.CandidatesTokenCount,
		})
	}
	return answer, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// responseText concatenates the text parts of the first candidate that has content.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if out := strings.TrimSpace(b.String()); out != "" {
			return out
		}
	}
	return ""
}

var _ llm.Generator = (*Client)(nil)
