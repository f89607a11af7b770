package adapter

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekAdapter implements the Adapter interface for DeepSeek models.
// DeepSeek uses an OpenAI-compatible API format.
type DeepSeekAdapter struct {
	chat *chatClient
}

// NewDeepSeekAdapter creates a new DeepSeek adapter.
func NewDeepSeekAdapter(apiKey string, opts ...option.RequestOption) (*DeepSeekAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(deepseekBaseURL),
	}, opts...)
	return &DeepSeekAdapter{chat: &chatClient{
		name:        "deepseek",
		client:      openai.NewClient(opts...),
		tokenParams: []tokenParam{paramMaxTokens},
	}}, nil
}

// Name returns the adapter identifier.
func (a *DeepSeekAdapter) Name() string {
	return "deepseek"
}

// Models returns the list of supported DeepSeek models.
func (a *DeepSeekAdapter) Models() []string {
	return []string{
		"deepseek-chat",
		"deepseek-reasoner",
	}
}

// Generate sends a request to the DeepSeek chat completions endpoint.
func (a *DeepSeekAdapter) Generate(ctx context.Context, req Request) (*Response, error) {
	return a.chat.generate(ctx, req)
}
