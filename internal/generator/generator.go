// Package generator adapts an eino chat model to the rag.Generator
// interface: one text prompt in, one trimmed answer out. The query pipeline
// never sees provider-specific message schemas.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/newsrag-go/internal/provider"
)

// ChatGenerator implements rag.Generator on top of a provider chat model.
// It is safe for concurrent use if the underlying model is.
type ChatGenerator struct {
	// model is the backing chat model (Ollama, OpenAI, Azure, Bedrock, Gemini).
	model provider.ChatModel
}

// New constructs a ChatGenerator from the given chat model.
func New(model provider.ChatModel) (*ChatGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("generator: chat model must not be nil")
	}
	return &ChatGenerator{model: model}, nil
}

// Generate sends prompt as a single user message and returns the model's
// response text with surrounding whitespace removed.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("generator: generation failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("generator: model returned nil response")
	}
	return strings.TrimSpace(resp.Content), nil
}
