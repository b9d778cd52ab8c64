package llm

import (
	"context"
	"fmt"
)

const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-20240620"
)

// Catalog resolves the provider named in a request into a Client.
type Catalog struct {
	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	AnthropicAPIKey string
	AnthropicModel  string
}

// Resolve returns a client for "gemini" (the default), "openai" or "claude".
func (c Catalog) Resolve(ctx context.Context, provider string) (Client, error) {
	switch provider {
	case "openai":
		model := c.OpenAIModel
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAIClient(c.OpenAIAPIKey, model), nil
	case "claude":
		model := c.AnthropicModel
		if model == "" {
			model = DefaultAnthropicModel
		}
		return NewAnthropicClient(c.AnthropicAPIKey, model), nil
	case "", "gemini":
		model := c.GeminiModel
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiClient(ctx, c.GeminiAPIKey, model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}

// Fallback returns the default-model Gemini client used for the single
// retry after a model-identifier-not-found failure.
func (c Catalog) Fallback(ctx context.Context) (Client, error) {
	return NewGeminiClient(ctx, c.GeminiAPIKey, DefaultGeminiModel)
}
