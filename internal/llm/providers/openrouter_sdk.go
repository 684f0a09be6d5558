package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	openrouter "github.com/revrost/go-openrouter"
)

// OpenRouterSDKHandler implements the ApiHandler interface using the OpenRouter Go SDK
type OpenRouterSDKHandler struct {
	options llm.ApiHandlerOptions
	client  *openrouter.Client
}

// NewOpenRouterSDKHandler creates a new OpenRouter handler using the SDK
func NewOpenRouterSDKHandler(options llm.ApiHandlerOptions) *OpenRouterSDKHandler {
	config := openrouter.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		config.BaseURL = strings.TrimRight(options.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: options.RequestTimeout()}
	client := openrouter.NewClientWithConfig(*config)

	return &OpenRouterSDKHandler{
		options: options,
		client:  client,
	}
}

func (h *OpenRouterSDKHandler) GetModel() llm.ModelResponse {
	return llm.ModelResponse{
		ID:       h.options.ModelID,
		Provider: llm.ProviderOpenRouter,
		Info: llm.ModelInfo{
			MaxTokens:           llm.DefaultMaxTokens,
			ContextWindow:       128000, // Most models support at least 128k context
			SupportsTemperature: true,
			Description:         "OpenRouter model",
		},
	}
}

// CompletePrompt sends a non-streaming chat completion through OpenRouter.
// Model ids keep their vendor prefix (e.g. "openai/o3-mini").
func (h *OpenRouterSDKHandler) CompletePrompt(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	messages := make([]openrouter.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: req.SystemPrompt},
		})
	}
	messages = append(messages, openrouter.ChatCompletionMessage{
		Role:    openrouter.ChatMessageRoleUser,
		Content: openrouter.Content{Text: req.Prompt},
	})

	request := openrouter.ChatCompletionRequest{
		Model:     h.options.ModelID,
		Messages:  messages,
		MaxTokens: llm.ResolveMaxTokens(req, h.options),
	}
	if req.Temperature != nil {
		request.Temperature = float32(*req.Temperature)
	}

	resp, err := h.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("openrouter chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content.Text
	if strings.TrimSpace(content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.CompletionResponse{Content: content}, nil
}
