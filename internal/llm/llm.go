package llm

import (
	"context"
	"errors"
	"strings"
)

// Generator answers a question using a document's text as context.
type Generator interface {
	GenerateAnswer(ctx context.Context, documentContext string, question string) (string, error)
}

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("LLM provider not configured")

// ErrEmptyAnswer is returned by providers when the model produced no text.
var ErrEmptyAnswer = errors.New("LLM returned an empty answer")

// PlaceholderGenerator is used when no provider is configured.
type PlaceholderGenerator struct{}

// GenerateAnswer returns ErrNotConfigured.
func (PlaceholderGenerator) GenerateAnswer(ctx context.Context, documentContext string, question string) (string, error) {
	_ = ctx
	_ = documentContext
	_ = question
	return "", ErrNotConfigured
}

// BuildPrompt renders the single-turn prompt sent to every provider.
func BuildPrompt(documentContext string, question string) string {
	var b strings.Builder
	b.Grow(len(documentContext) + len(question) + 48)
	b.WriteString("Document Content:\n")
	b.WriteString(documentContext)
	b.WriteString("\n\nUser Query: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
