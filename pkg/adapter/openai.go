package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type tokenParam string

const (
	paramMaxCompletionTokens tokenParam = "max_completion_tokens"
	paramMaxTokens           tokenParam = "max_tokens"
)

// chatClient issues chat completions against any OpenAI-compatible API.
type chatClient struct {
	name        string
	client      openai.Client
	tokenParams []tokenParam
}

func (c *chatClient) generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for idx, param := range c.tokenParams {
		resp, err := c.client.Chat.Completions.New(ctx, c.params(req, param))
		if err == nil {
			return c.toResponse(req, resp)
		}
		lastErr = err
		if idx < len(c.tokenParams)-1 && isUnsupportedParam(err, string(param)) {
			continue
		}
		break
	}
	return nil, wrapError(c.name, statusOf(lastErr), lastErr)
}

func (c *chatClient) params(req Request, param tokenParam) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	limit := int64(maxTokens(req))
	switch param {
	case paramMaxTokens:
		params.MaxTokens = openai.Int(limit)
	default:
		params.MaxCompletionTokens = openai.Int(limit)
	}
	return params
}

func (c *chatClient) toResponse(req Request, resp *openai.ChatCompletion) (*Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", c.name)
	}
	return &Response{
		Content: resp.Choices[0].Message.Content,
		Adapter: c.name,
		Model:   req.Model,
		Usage: &Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// isUnsupportedParam reports whether the API rejected a specific request
// parameter, which some models do for max_completion_tokens.
func isUnsupportedParam(err error, param string) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Code == "unsupported_parameter" {
		return apiErr.Param == param || strings.Contains(apiErr.Message, param)
	}
	msg := err.Error()
	return strings.Contains(msg, "unsupported_parameter") && strings.Contains(msg, "'"+param+"'")
}

func statusOf(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// OpenAIAdapter implements the Adapter interface for OpenAI models.
type OpenAIAdapter struct {
	chat *chatClient
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string, opts ...option.RequestOption) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIAdapter{chat: &chatClient{
		name:        "openai",
		client:      openai.NewClient(opts...),
		tokenParams: []tokenParam{paramMaxCompletionTokens, paramMaxTokens},
	}}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Models returns the list of supported OpenAI models.
func (a *OpenAIAdapter) Models() []string {
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1-mini",
	}
}

// Generate sends a request to OpenAI chat completions.
func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (*Response, error) {
	return a.chat.generate(ctx, req)
}
